package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/duckfullstop/eirie/pkg/eir"
	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

var adapter = bluetooth.DefaultAdapter

// Scan listens for LE advertisements and folds each one into the report held
// for that device, printing a line whenever a merge actually changed
// something. With dump set the full report (service list included) is shown
// instead of the one-line summary.
func Scan(prefix string, duration time.Duration, dump bool) error {
	if err := adapter.Enable(); err != nil {
		return fmt.Errorf("cannot enable bluetooth adapter: %w", err)
	}

	reports := make(map[string]*eir.Report)

	if duration > 0 {
		time.AfterFunc(duration, func() {
			// StopScan unblocks adapter.Scan below
			if err := adapter.StopScan(); err != nil {
				log.Warnf("😕 Could not stop scan: %s", err)
			}
		})
	}

	log.Print("🕵️ Scanning for advertisements...")
	err := adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if prefix != "" && !strings.HasPrefix(result.LocalName(), prefix) {
			return
		}

		key := result.Address.String()
		held, ok := reports[key]
		if !ok {
			held = eir.New()
			reports[key] = held
		}

		changed := held.Merge(resultToReport(result))
		if changed == 0 {
			// seen it all before, stay quiet
			return
		}

		if dump {
			log.Printf("👀 %s: [%s] %s", key, changed, held.Describe(true))
		} else {
			log.Printf("👀 %s: [%s] %s", key, changed, held)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("🛑 Scan finished, saw %d devices", len(reports))
	return nil
}

func main() {
	log.Print("🦆 eiriescan - live Bluetooth discovery report viewer")

	flgsScan := flag.NewFlagSet("scan", flag.ExitOnError)
	flgSPrefix := flgsScan.String("prefix", "", "only show devices whose local name starts with this prefix")
	flgSDuration := flgsScan.Duration("duration", 0, "stop scanning after this long (0 means run until interrupted)")
	flgSDump := flgsScan.Bool("dump", false, "print full reports including the service UUID list")

	if len(os.Args) < 2 {
		log.Println("😕 expect subcommand (try 'scan')")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "scan":
		flgsScan.Parse(os.Args[2:])
		if err := Scan(*flgSPrefix, *flgSDuration, *flgSDump); err != nil {
			log.Fatalf("😭 Scan failed: %s", err)
		}
	case "help":
		log.Print("❤️ Available commands:")
		log.Print("   scan [-prefix NAME] [-duration 30s] [-dump]")
	default:
		log.Printf("😕 Command %s is invalid - the only mode right now is 'scan'", os.Args[1])
	}
}
