package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	zkmips "github.com/vybium/vybium-zkmips/pkg/vybium-zkmips"
)

// ProgramInput is the JSON form of a program
type ProgramInput struct {
	Instructions []uint32          `json:"instructions"`
	PCStart      uint32            `json:"pc_start"`
	PCBase       uint32            `json:"pc_base"`
	Image        map[string]uint32 `json:"image,omitempty"` // decimal or 0x-prefixed addresses
}

func loadProgram(path string) (*zkmips.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	var input ProgramInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	if len(input.Instructions) == 0 {
		return nil, fmt.Errorf("program has no instructions")
	}

	program := zkmips.NewProgram(input.Instructions, input.PCStart, input.PCBase)
	for key, value := range input.Image {
		addr, err := strconv.ParseUint(key, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid image address %q: %w", key, err)
		}
		program.Image[uint32(addr)] = value
	}
	return program, nil
}

func loadRecord(path string, program *zkmips.Program) (*zkmips.ExecutionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record: %w", err)
	}
	defer f.Close()

	record, err := zkmips.DecodeRecord(f, program)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return record, nil
}
