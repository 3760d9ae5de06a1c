// Command chat is a terminal client for the chat endpoint, printing the
// assistant reply token by token as the stream arrives.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"bokeeb.kz/site-backend/internal/chatstream"
	"bokeeb.kz/site-backend/internal/core"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api", "Base API URL")
	apiKey := flag.String("key", os.Getenv("PUBLISHABLE_KEY"), "Publishable API key")
	language := flag.String("lang", "ru", "Chat language: ru, kz, en or cn")
	flag.Parse()

	if *apiKey == "" {
		log.Fatal("API key is required (-key flag or PUBLISHABLE_KEY)")
	}

	client := chatstream.NewClient(*baseURL, *apiKey, core.ParseLanguage(*language))
	fmt.Printf("Session %s. Type a question, or /quit to exit.\n", client.SessionID())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			break
		}

		_, err := client.Send(context.Background(), text, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		if err != nil {
			if errors.Is(err, chatstream.ErrRateLimited) {
				fmt.Println(core.MsgTooManyRequests)
				continue
			}
			fmt.Printf("Ошибка: %v\n", err)
		}
	}
}
