package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/nstehr/venture/venture-core/ipc"
)

var (
	callWS      string
	callTimeout time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "call <type> [payload.json]",
		Short: "Send one envelope to a running sidecar and print the reply",
		Long: "Connects over the unix socket (or --ws URL), sends an envelope of the given type " +
			"with the JSON payload from the file (or stdin), and prints the reply envelope.",
		Args: cobra.RangeArgs(1, 2),
		RunE: runCall,
	}
	cmd.Flags().StringVarP(&socketPath, "socket", "s", "", "Unix socket path (default: $VENTURE_SOCKET or /tmp/venture.sock)")
	cmd.Flags().StringVar(&callWS, "ws", "", "WebSocket URL instead of the unix socket, e.g. ws://localhost:8081/ws")
	cmd.Flags().DurationVar(&callTimeout, "timeout", 10*time.Second, "Give up after this long")

	RootCmd.AddCommand(cmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	var payload json.RawMessage
	if err := readInput(cmd, optionalArg(args, 1), &payload); err != nil {
		return err
	}

	conn, err := dialSidecar(cmd)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Write(ipc.Envelope{Type: args[0], Data: payload}); err != nil {
		return err
	}

	type result struct {
		env ipc.Envelope
		err error
	}
	done := make(chan result, 1)
	go func() {
		env, err := conn.Read()
		done <- result{env, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("read reply: %w", r.err)
		}
		if err := printJSON(cmd, r.env); err != nil {
			return err
		}
		if r.env.Type == ipc.TypeError {
			return fmt.Errorf("sidecar rejected %s", args[0])
		}
		return nil
	case <-time.After(callTimeout):
		return fmt.Errorf("no reply to %s within %s", args[0], callTimeout)
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}

func dialSidecar(cmd *cobra.Command) (ipc.Conn, error) {
	if callWS != "" {
		return ipc.DialWebSocket(cmd.Context(), callWS)
	}
	path := getSocketPath()
	c, err := net.DialTimeout("unix", path, callTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	return ipc.NewStreamConn(c), nil
}
