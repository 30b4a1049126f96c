// Command client is a minimal REPL against a respkv server on
// 127.0.0.1:6379. It takes no flags, matching the Rust original's
// bin/client.rs.
package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/akashmaji946/respkv/internal/clientio"
	"github.com/akashmaji946/respkv/internal/resp"
)

const serverAddr = "127.0.0.1:6379"

func main() {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s: %v\n", serverAddr, err)
		os.Exit(1)
	}
	defer conn.Close()

	enc := resp.NewEncoder(conn)
	dec := resp.NewDecoder(conn)
	in := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(clientio.Prompt)
		if !in.Scan() {
			return
		}

		req, ok := clientio.EncodeRequest(in.Text())
		if !ok {
			continue
		}
		if err := enc.Encode(req); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			return
		}

		reply, err := dec.Decode()
		if err != nil {
			if err == resp.ErrConnectionClosed || err == io.EOF {
				fmt.Fprintln(os.Stderr, "server closed the connection")
				return
			}
			fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
			return
		}
		fmt.Println(clientio.RenderReply(reply))
	}
}
