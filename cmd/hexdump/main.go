// File: cmd/hexdump/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// hexdump pops fixed-size records from a consumer handle and hex-dumps
// them, polling a stop flag instead of blocking, in the spirit of the
// original driver's hexdump_buffer. It is wired to an in-process feeder so
// the binary is runnable standalone; production use would instead hand the
// same *pipe.Consumer to a real producer pipeline.

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/momentics/ringpipe/pipe"
)

func hexdumpBuffer(record []byte) {
	fmt.Println(hex.Dump(record))
}

func main() {
	recordSize := flag.Int("record", 16, "record size in bytes")
	count := flag.Int("count", 8, "number of demo records to feed before closing the producer")
	poll := flag.Duration("poll", 10*time.Millisecond, "polling interval while waiting for records")
	flag.Parse()

	h, err := pipe.NewPipe(uint64(*recordSize))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexdump: NewPipe: %v\n", err)
		os.Exit(1)
	}

	producer, err := pipe.NewProducer(h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexdump: NewProducer: %v\n", err)
		os.Exit(1)
	}
	consumer, err := pipe.NewConsumer(h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hexdump: NewConsumer: %v\n", err)
		os.Exit(1)
	}
	if err := h.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "hexdump: %v\n", err)
		os.Exit(1)
	}

	var stop atomic.Bool
	go func() {
		for i := 0; i < *count; i++ {
			rec := make([]byte, *recordSize)
			for j := range rec {
				rec[j] = byte(i*len(rec) + j)
			}
			if err := producer.Push(rec, 1); err != nil {
				fmt.Fprintf(os.Stderr, "hexdump: Push: %v\n", err)
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		producer.Close()
		stop.Store(true)
	}()

	target := make([]byte, *recordSize)
	for {
		n, err := consumer.PopEager(target, 1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hexdump: Pop: %v\n", err)
			os.Exit(1)
		}
		if n == 1 {
			hexdumpBuffer(target)
			continue
		}
		if stop.Load() {
			st, _ := pipe.Stats(consumer)
			if st.ElemCount == 0 {
				break
			}
		}
		time.Sleep(*poll)
	}

	consumer.Close()
	fmt.Println("hexdump: done")
}
