// cmd/ev3ctl/main.go
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/legoev3/uartengine/internal/config"
	"github.com/legoev3/uartengine/internal/engine"
	"github.com/legoev3/uartengine/internal/registry"
	"github.com/legoev3/uartengine/internal/transport/fixture"
	"github.com/legoev3/uartengine/internal/transport/serial"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ev3ctl <config.yaml> [fixture-sensor-type]")
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	reg := registry.New()

	var sess *engine.Session
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid fixture sensor type: %v", err)
		}
		f, ok := cfg.Fixture(uint8(n))
		if !ok {
			log.Fatalf("no fixture configured for sensor type %d", n)
		}
		handshake, err := config.Handshake(f)
		if err != nil {
			log.Fatalf("fixture build failed: %v", err)
		}
		ft := fixture.New(handshake)
		sess = engine.NewSession(engine.Options{Transport: ft, Publisher: reg})
		ft.Start(sess.Feed)
	} else {
		client, err := serial.Open(serial.Config{Address: cfg.Engine.Serial.Address}, cfg.Engine.DefaultBaud)
		if err != nil {
			log.Fatalf("serial open failed: %v", err)
		}
		defer client.Close()
		sess = engine.NewSession(engine.Options{Transport: client, Publisher: reg})
		go func() {
			if err := client.Read(sess.Feed); err != nil {
				log.Printf("ev3ctl: serial read loop ended: %v", err)
			}
		}()
	}
	defer sess.Close()

	runConsole(sess.Handle())
}

// runConsole reads operator command lines from stdin, tokenizes each
// with a shell-style lexer, and drives h. It understands:
//
//	mode <n>             select mode n
//	write <hex> [hex...] send a WRITE payload, one byte per hex token
//	modes                list the sensor's reported modes
//	status               print the current diagnostic snapshot
//	quit                 exit
func runConsole(h *engine.Handle) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("ev3ctl> ")
	for scanner.Scan() {
		line := scanner.Text()
		args, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("parse error: %v\n", err)
			fmt.Print("ev3ctl> ")
			continue
		}
		if len(args) == 0 {
			fmt.Print("ev3ctl> ")
			continue
		}

		switch args[0] {
		case "mode":
			if len(args) != 2 {
				fmt.Println("usage: mode <n>")
				break
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Printf("invalid mode: %v\n", err)
				break
			}
			if err := h.SetMode(uint8(n)); err != nil {
				fmt.Printf("mode select failed: %v\n", err)
			}

		case "write":
			payload, err := decodeHexTokens(args[1:])
			if err != nil {
				fmt.Printf("invalid payload: %v\n", err)
				break
			}
			if err := h.Write(payload); err != nil {
				fmt.Printf("write failed: %v\n", err)
			}

		case "modes":
			for i, m := range h.Modes() {
				fmt.Printf("%d: %s (%s)\n", i, m.Name, m.Units)
			}

		case "status":
			fmt.Println(h.Diagnostic().String())

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command %q\n", args[0])
		}

		fmt.Print("ev3ctl> ")
	}
}

func decodeHexTokens(tokens []string) ([]byte, error) {
	out := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		b, err := hex.DecodeString(strings.TrimPrefix(tok, "0x"))
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("token %q is not a single hex byte", tok)
		}
		out = append(out, b[0])
	}
	return out, nil
}
