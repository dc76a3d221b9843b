// A terminal client for all three play modes: hotseat and vs-bot run fully
// in-process, online talks to a running server over WebSocket.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gridrunner/tictactoe-backend/internal/bot"
	"github.com/gridrunner/tictactoe-backend/internal/entity"
	"github.com/gridrunner/tictactoe-backend/internal/match"
	"github.com/gridrunner/tictactoe-backend/pkg/client"
)

func main() {
	mode := flag.String("mode", "hotseat", "hotseat, bot or online")
	addr := flag.String("addr", "ws://localhost:8081/ws", "server websocket url for online mode")
	delay := flag.Duration("delay", 500*time.Millisecond, "bot reply delay for bot mode")
	flag.Parse()

	switch *mode {
	case "hotseat":
		runLocal(match.VariantHumanVsHuman, *delay)
	case "bot":
		runLocal(match.VariantHumanVsBot, *delay)
	case "online":
		runOnline(*addr)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runLocal(variant string, delay time.Duration) {
	// the board is the interface here, keep the log out of it
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	ctrl := match.NewController(logger, bot.NewEngine(), delay)
	ctrl.OnState(func(game entity.Game) {
		printState([9]string(game.Board), game.Turn, game.Status, game.Winner)
	})

	ctrl.Start(variant)

	fmt.Println("cells are numbered 0-8; type a number to move, r to restart, q to quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "q", "quit":
			return
		case "r", "restart":
			ctrl.Start(variant)
		default:
			cell, err := strconv.Atoi(input)
			if err != nil {
				fmt.Println("type a cell number, r or q")
				continue
			}

			ctrl.SubmitMove(cell)
		}
	}
}

func runOnline(addr string) {
	dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	proxy, err := client.Dial(dialCtx, addr)
	cancel()

	if err != nil {
		log.Fatalf("failed to connect to %s: %v", addr, err)
	}
	defer proxy.Close()

	proxy.OnState(func(state client.GameState) {
		if room := proxy.Room(); room != "" {
			fmt.Printf("room %s, you play %s\n", room, proxy.Mark())
		}

		printState(state.Board, state.Turn, state.Status, state.Winner)
	})
	proxy.OnError(func(message string) {
		fmt.Println("server:", message)
	})

	fmt.Println("commands: create, join <room>, 0-8 to move, restart, leave, q to quit")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	inputs := make(chan string)
	go func() {
		defer close(inputs)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputs <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-proxy.Done():
			fmt.Println("connection closed")
			return
		case <-interrupt:
			return
		case input, ok := <-inputs:
			if !ok {
				return
			}

			if quit := runCommand(proxy, input); quit {
				return
			}
		}
	}
}

func runCommand(proxy *client.Client, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	var err error

	switch fields[0] {
	case "q", "quit":
		return true
	case "create":
		err = proxy.CreateGame()
	case "join":
		if len(fields) < 2 {
			fmt.Println("usage: join <room>")
			return false
		}

		err = proxy.JoinGame(fields[1])
	case "restart":
		err = proxy.RestartGame()
	case "leave":
		err = proxy.LeaveGame()
	default:
		cell, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			fmt.Println("commands: create, join <room>, 0-8, restart, leave, q")
			return false
		}

		err = proxy.MakeMove(cell)
	}

	if err != nil {
		fmt.Println("send failed:", err)
	}

	return false
}

func printState(board [9]string, turn, status, winner string) {
	cells := make([]string, len(board))
	for i, mark := range board {
		if mark == "" {
			cells[i] = strconv.Itoa(i)
		} else {
			cells[i] = mark
		}
	}

	fmt.Println()
	fmt.Printf(" %s | %s | %s\n", cells[0], cells[1], cells[2])
	fmt.Println("---+---+---")
	fmt.Printf(" %s | %s | %s\n", cells[3], cells[4], cells[5])
	fmt.Println("---+---+---")
	fmt.Printf(" %s | %s | %s\n", cells[6], cells[7], cells[8])

	switch {
	case winner == "draw":
		fmt.Println("game over: draw")
	case winner != "":
		fmt.Printf("game over: %s wins\n", winner)
	case status == "waiting":
		fmt.Println("waiting for an opponent")
	default:
		fmt.Printf("%s to move\n", turn)
	}
}
