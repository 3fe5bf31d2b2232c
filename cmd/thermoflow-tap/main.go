// thermoflow-tap attaches to a running thermoflowd monitor socket and prints
// every stage event as it arrives. Useful for tuning a pipeline: each sample
// period produces one state line per stage plus an output line per forwarded
// value.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"sort"

	"github.com/c360/thermoflow/monitor"
)

func main() {
	network := flag.String("network", "unix", "Socket type: unix or tcp")
	addr := flag.String("addr", "/tmp/thermoflow.sock", "Socket address to attach to")
	raw := flag.Bool("raw", false, "Print wire lines without decoding")
	flag.Parse()

	conn, err := net.Dial(*network, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s %s: %v\n", *network, *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if *raw {
			fmt.Println(line)
			continue
		}
		printEvent(line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
}

func printEvent(line string) {
	msg, err := monitor.ParseLine(line)
	if err != nil {
		fmt.Println(line)
		return
	}

	if msg.Tag == monitor.OutputTag {
		fmt.Printf("[%d] -> %s\n", msg.Index, msg.Payload)
		return
	}

	var state map[string]float64
	if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
		fmt.Printf("[%d] %s %s\n", msg.Index, msg.Tag, msg.Payload)
		return
	}

	switch msg.Tag {
	case "PID":
		fmt.Printf("[%d] PID p=%.3f i=%.3f d=%.3f\n",
			msg.Index, state["P"], state["I"], state["D"])
	default:
		fmt.Printf("[%d] %s %s\n", msg.Index, msg.Tag, formatState(state))
	}
}

func formatState(state map[string]float64) string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.3f", k, state[k])
	}
	return out
}
