package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"google.golang.org/grpc/status"

	grpcadapter "github.com/andrescamacho/outpost-go/internal/adapters/grpc"
)

// requestTimeout bounds every daemon call made by the CLI
const requestTimeout = 10 * time.Second

// withClient connects to the daemon, runs fn and closes the connection
func withClient(fn func(ctx context.Context, client *grpcadapter.DaemonClient) error) error {
	client, err := grpcadapter.NewDaemonClient(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := fn(ctx, client); err != nil {
		return describeError(err)
	}
	return nil
}

// describeError strips the gRPC envelope so the user sees the daemon's
// message and, with --verbose, the status code
func describeError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if verbose {
		return fmt.Errorf("%s (%s)", st.Message(), st.Code())
	}
	return fmt.Errorf("%s", st.Message())
}

// printResult prints v as JSON when --json is set, otherwise runs human
func printResult(v any, human func()) error {
	if !jsonOutput {
		human()
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatCounts renders a resource map as "coal=3, iron_ore=12" in name order
func formatCounts[K ~string](counts map[K]int) string {
	if len(counts) == 0 {
		return "(none)"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[K(k)]))
	}
	return strings.Join(parts, ", ")
}
