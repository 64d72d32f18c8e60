package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kirillkom/roadsign-assistant/internal/bootstrap"
	"github.com/kirillkom/roadsign-assistant/internal/config"
	"github.com/kirillkom/roadsign-assistant/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewTextLogger(os.Stderr, "cli", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("==============================================")
	fmt.Println("      Road Signage Assistant")
	fmt.Println("==============================================")

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()
	fmt.Printf("Loaded %d regulations.\n", len(app.Corpus.Entries))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nDescribe the road issue: ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return
		}

		response, err := app.Answerer.Answer(ctx, query)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		fmt.Println("\n======= ANSWER =======")
		fmt.Println(response.Answer)

		if len(response.Documents) == 0 {
			continue
		}
		fmt.Println("\n======= DOCUMENTS USED =======")
		for i, doc := range response.Documents {
			fmt.Printf("\nDoc %d (Score: %.2f)\n", i+1, doc.Score)
			fmt.Printf("  Problem : %s\n", doc.Problem)
			fmt.Printf("  Clause  : %s\n", doc.Clause)
		}
	}
}
