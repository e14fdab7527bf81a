// Command urlexpand is an interactive shell for checking and expanding
// shortened URLs.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/urlexpand/urlexpand"
)

const expandTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	fmt.Println("URL Expander (type 'help' for commands)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		cmd, arg := splitCommand(scanner.Text())
		switch cmd {
		case "check", "c":
			runCheck(arg)
		case "expand", "e":
			runExpand(arg)
		case "help", "h":
			printHelp()
		case "quit", "q", "exit":
			return
		case "":
		default:
			fmt.Println("unknown command (try 'help')")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("error reading input")
		os.Exit(1)
	}
}

func runCheck(arg string) {
	if arg == "" {
		fmt.Println("usage: check <url>")
		return
	}
	if urlexpand.IsShortened(arg) {
		fmt.Println("✓ shortened")
	} else {
		fmt.Println("✗ not shortened")
	}
}

func runExpand(arg string) {
	if arg == "" {
		fmt.Println("usage: expand <url>")
		return
	}
	if !urlexpand.IsShortened(arg) {
		fmt.Println("✗ not a shortened url")
		return
	}

	// A failed expansion is reported and the loop keeps going; only
	// input errors terminate the process.
	expanded, err := urlexpand.UnshortenBlocking(arg, expandTimeout)
	if err != nil {
		fmt.Printf("✗ %s\n", err)
		return
	}
	fmt.Printf("→ %s\n", expanded)
}

func printHelp() {
	fmt.Println("check <url>  - check if url is shortened")
	fmt.Println("expand <url> - expand shortened url")
	fmt.Println("quit         - exit")
}

func splitCommand(line string) (cmd string, arg string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	cmd = parts[0]
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}
