// File: cmd/filefeeder/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// filefeeder reads a file in fixed-size chunks and pushes them into a pipe
// from N producer goroutines, then closes its producer handle and exits.
// It exists to give the ringpipe library a runnable, observable surface; it
// carries none of the library's invariants itself.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/momentics/ringpipe/pipe"
)

func main() {
	path := flag.String("file", "", "path to the file to feed into the pipe")
	chunkSize := flag.Int("chunk", 4096, "record size in bytes")
	producers := flag.Int("producers", 1, "number of producer goroutines")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "filefeeder: -file is required")
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filefeeder: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	h, err := pipe.NewPipe(uint64(*chunkSize))
	if err != nil {
		fmt.Fprintf(os.Stderr, "filefeeder: NewPipe: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	chunks := make(chan []byte, *producers*2)
	go func() {
		defer close(chunks)
		for {
			buf := make([]byte, *chunkSize)
			n, err := io.ReadFull(f, buf)
			if n > 0 {
				// buf is always chunkSize bytes, even for a trailing short
				// read: the pipe's records are fixed-width, so a partial
				// final chunk is zero-padded rather than shortened.
				chunks <- buf
			}
			if err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	var pushed int64
	var mu sync.Mutex

	for i := 0; i < *producers; i++ {
		p, err := pipe.NewProducer(h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "filefeeder: NewProducer: %v\n", err)
			os.Exit(1)
		}
		wg.Add(1)
		go func(p *pipe.Producer) {
			defer wg.Done()
			defer p.Close()
			for chunk := range chunks {
				if err := p.Push(chunk, 1); err != nil {
					fmt.Fprintf(os.Stderr, "filefeeder: Push: %v\n", err)
					return
				}
				mu.Lock()
				pushed++
				mu.Unlock()
			}
		}(p)
	}

	wg.Wait()
	fmt.Printf("filefeeder: pushed %d records of %d bytes from %q\n", pushed, *chunkSize, *path)
}
