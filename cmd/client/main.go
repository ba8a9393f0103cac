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

	"github.com/zhengyanglee07/Let-s-Chat/internal/client"
)

func main() {
	addr := flag.String("addr", "ws://localhost:3001/ws", "Server WebSocket URL")
	user := flag.String("user", "", "User id to declare online")
	peer := flag.String("peer", "", "Peer user id to chat with")
	flag.Parse()

	if *user == "" || *peer == "" {
		fmt.Fprintln(os.Stderr, "both -user and -peer are required")
		flag.Usage()
		os.Exit(1)
	}

	c := client.New(*addr, *user)
	if err := c.Connect(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.Online(); err != nil {
		fmt.Fprintf(os.Stderr, "online: %v\n", err)
		os.Exit(1)
	}
	if err := c.JoinChat(*peer); err != nil {
		fmt.Fprintf(os.Stderr, "join: %v\n", err)
		os.Exit(1)
	}

	go printEvents(c)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Chatting with %s. Type a message and press enter; Ctrl-C to quit.\n", *peer)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-sigChan:
			_ = c.Offline()
			return
		case line, ok := <-lines:
			if !ok {
				_ = c.Offline()
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := c.SendMessage(*peer, text); err != nil {
				fmt.Fprintf(os.Stderr, "send: %v\n", err)
				return
			}
		}
	}
}

func printEvents(c *client.Client) {
	for event := range c.Events() {
		switch {
		case event.Message != nil:
			if event.Message.Sender == c.UserID() {
				continue
			}
			fmt.Printf("[%s] %s\n", event.Message.Sender, event.Message.Text)
		case event.Users != nil:
			fmt.Printf("online: %s\n", strings.Join(event.Users, ", "))
		}
	}
}
