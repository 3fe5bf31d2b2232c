// thermoflow-out prints the current fan duty of a running thermoflowd and
// exits. It waits for the first output event of the final stage of the
// built-in eight-stage pipeline, so it only makes sense against a daemon
// running the default chain.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/c360/thermoflow/monitor"
)

// Final stage index of the built-in default pipeline.
const outputStageIndex = 7

func main() {
	network := flag.String("network", "unix", "Socket type: unix or tcp")
	addr := flag.String("addr", "/tmp/thermoflow.sock", "Socket address to attach to")
	flag.Parse()

	conn, err := net.Dial(*network, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s %s: %v\n", *network, *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		msg, err := monitor.ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		if msg.Index != outputStageIndex || msg.Tag != monitor.OutputTag {
			continue
		}

		value, err := strconv.ParseFloat(msg.Payload, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad output value %q: %v\n", msg.Payload, err)
			os.Exit(1)
		}
		fmt.Printf("%2.0f\n", value)
		return
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
	}
	os.Exit(1)
}
