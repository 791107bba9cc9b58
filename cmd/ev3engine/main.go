// cmd/ev3engine/main.go
package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/legoev3/uartengine/internal/config"
	"github.com/legoev3/uartengine/internal/engine"
	"github.com/legoev3/uartengine/internal/registry"
	"github.com/legoev3/uartengine/internal/transport/fixture"
	"github.com/legoev3/uartengine/internal/transport/serial"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: ev3engine <config.yaml> [fixture-sensor-type]")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate + normalize config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	// --------------------
	// Registry + listeners
	// --------------------

	reg := registry.New()
	reg.AddListener(registry.NewLogListener(nil))

	// --------------------
	// Transport: real serial port, or a fixture replay if requested
	// --------------------

	var sess *engine.Session

	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("invalid fixture sensor type: %v", err)
		}
		sensorType := uint8(n)

		f, ok := cfg.Fixture(sensorType)
		if !ok {
			log.Fatalf("no fixture configured for sensor type %d", sensorType)
		}
		handshake, err := config.Handshake(f)
		if err != nil {
			log.Fatalf("fixture build failed: %v", err)
		}

		ft := fixture.New(handshake)
		sess = engine.NewSession(engine.Options{
			Transport:        ft,
			Publisher:        reg,
			DataErrThreshold: cfg.Engine.DataErrThreshold,
		})
		ft.Start(sess.Feed)
	} else {
		client, err := serial.Open(serial.Config{
			Address:  cfg.Engine.Serial.Address,
			DataBits: cfg.Engine.Serial.DataBits,
			StopBits: cfg.Engine.Serial.StopBits,
			Parity:   cfg.Engine.Serial.Parity,
		}, cfg.Engine.DefaultBaud)
		if err != nil {
			log.Fatalf("serial open failed: %v", err)
		}
		defer client.Close()

		sess = engine.NewSession(engine.Options{
			Transport:        client,
			Publisher:        reg,
			DataErrThreshold: cfg.Engine.DataErrThreshold,
		})

		go func() {
			if err := client.Read(sess.Feed); err != nil {
				log.Printf("ev3engine: serial read loop ended: %v", err)
			}
		}()
	}
	defer sess.Close()

	// --------------------
	// Block forever (daemon-safe, no deadlock)
	// --------------------
	for {
		time.Sleep(time.Hour)
	}
}
