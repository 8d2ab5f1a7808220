// ABOUTME: Interactive terminal client for the docket-gateway chat endpoint
// ABOUTME: Connects over WebSocket, sends stdin lines, and colorizes agent frames

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	url := flag.String("url", "ws://localhost:8080/ws", "gateway websocket URL")
	token := flag.String("token", os.Getenv("DOCKET_TOKEN"), "session token")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Error: a session token is required (--token or DOCKET_TOKEN)")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *url, *token); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, url, token string) error {
	conn, _, err := websocket.Dial(ctx, url+"?token="+token, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// Frames can be large; the default read limit is too small for long
	// agent responses.
	conn.SetReadLimit(1 << 20)

	gray := color.New(color.FgHiBlack)
	gray.Println("Connected. Type a message and press Enter. Ctrl-D to quit.")

	go func() {
		<-ctx.Done()
		conn.Close(websocket.StatusNormalClosure, "interrupted")
	}()

	// Reader: print every inbound frame.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			printFrame(string(data))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
	}

	conn.Close(websocket.StatusNormalClosure, "bye")
	<-done
	return scanner.Err()
}

func printFrame(frame string) {
	switch {
	case strings.HasPrefix(frame, "User: "):
		color.New(color.FgHiBlack).Println(frame)
	case strings.HasPrefix(frame, "Agent [INTERRUPT]: "):
		color.New(color.FgYellow, color.Bold).Println(frame)
	case strings.HasPrefix(frame, "Agent [UPDATE]: "):
		color.New(color.FgCyan).Println(frame)
	case strings.HasPrefix(frame, "Agent: "):
		color.New(color.FgGreen).Println(frame)
	case strings.HasPrefix(frame, "Error: "):
		color.New(color.FgRed).Println(frame)
	default:
		fmt.Println(frame)
	}
}
