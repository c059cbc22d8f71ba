// gnb-recorder listens for JSON metric datagrams pushed by a gNB and
// appends them to a JSONL file, one datagram per line. Malformed datagrams
// are counted and dropped.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	listenAddr = flag.String("listen", ":55555", "UDP listen address")
	outPath    = flag.String("out", "gnb_metrics.jsonl", "output JSONL path")
	flushEvery = flag.Duration("flush-every", 2*time.Second, "flush interval")
)

func main() {
	flag.Parse()

	addr, err := net.ResolveUDPAddr("udp", *listenAddr)
	if err != nil {
		log.Fatalf("resolve %s: %v", *listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		log.Fatalf("listen %s: %v", *listenAddr, err)
	}
	defer conn.Close()

	out, err := os.OpenFile(*outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open %s: %v", *outPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		conn.Close()
	}()

	log.Printf("gnb-recorder listening on %s, writing to %s", *listenAddr, *outPath)

	var received, dropped int
	buf := make([]byte, 64*1024)
	lastFlush := time.Now()
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			// Closed by the signal handler.
			break
		}
		received++

		if !json.Valid(buf[:n]) {
			dropped++
			log.Printf("dropping malformed datagram (%d bytes)", n)
			continue
		}

		line := append(append([]byte(nil), buf[:n]...), '\n')
		if _, err := w.Write(line); err != nil {
			log.Fatalf("write output: %v", err)
		}
		if time.Since(lastFlush) >= *flushEvery {
			if err := w.Flush(); err != nil {
				log.Fatalf("flush output: %v", err)
			}
			lastFlush = time.Now()
		}
	}

	log.Printf("gnb-recorder done: %d datagrams received, %d dropped", received, dropped)
}
