package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// StdoutOutput Console output implementation
type StdoutOutput struct{}

// NewStdoutOutput Creates a StdoutOutput instance
func NewStdoutOutput() (*StdoutOutput, error) {
	return &StdoutOutput{}, nil
}

// Send Prints the query to the console as indented JSON
func (s *StdoutOutput) Send(ctx context.Context, query types.Query) error {
	data, err := json.MarshalIndent(query, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// Close No resources to close for console output
func (s *StdoutOutput) Close() error {
	return nil
}
