package inference

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// subprocessRuntime executes the trained Keras model through a Python
// sidecar (scripts/model_service.py). Requests are length-prefixed JSON
// documents on stdin; responses come back as one JSON line on stdout.
// The same bridge protocol is used for the MediaPipe hand service.
type subprocessRuntime struct {
	modelPath string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
}

// NewSubprocessRuntime creates a Runtime backed by the Python model
// service. The process is started lazily on first prediction.
func NewSubprocessRuntime(modelPath string, meta *ModelMetadata) (Runtime, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model weights: %w", err)
	}
	if findModelScript() == "" {
		return nil, fmt.Errorf("model_service.py not found")
	}

	return &subprocessRuntime{modelPath: modelPath}, nil
}

type predictRequest struct {
	Window [][][]float64 `json:"window"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error,omitempty"`
}

// Predict sends the window to the sidecar and reads back the output
// probability vector.
func (r *subprocessRuntime) Predict(window [][][]float64) ([]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureStarted(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(predictRequest{Window: window})
	if err != nil {
		return nil, fmt.Errorf("encode window: %w", err)
	}

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(payload)))

	if _, err := r.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := r.stdin.Write(payload); err != nil {
		return nil, fmt.Errorf("write window: %w", err)
	}

	line, err := r.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response predictResponse
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("model service: %s", response.Error)
	}

	return response.Predictions, nil
}

// Close shuts down the Python process. Safe to call repeatedly.
func (r *subprocessRuntime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return nil
	}

	if r.stdin != nil {
		r.stdin.Close()
	}

	err := r.cmd.Wait()
	r.started = false
	r.cmd = nil
	r.stdin = nil
	r.stdout = nil

	return err
}

func (r *subprocessRuntime) ensureStarted() error {
	if r.started {
		return nil
	}

	scriptPath := findModelScript()
	if scriptPath == "" {
		return fmt.Errorf("model_service.py not found")
	}

	pythonPath := findModelPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	r.cmd = exec.Command(pythonPath, scriptPath, r.modelPath)

	stdin, err := r.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	r.cmd.Stderr = os.Stderr

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("start model service: %w", err)
	}

	r.stdin = stdin
	r.stdout = bufio.NewReader(stdout)
	r.started = true

	return nil
}

func findModelScript() string {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", "model_service.py"),
		filepath.Join("..", "scripts", "model_service.py"),
		filepath.Join(execDir, "scripts", "model_service.py"),
		filepath.Join(os.Getenv("HOME"), ".lia", "scripts", "model_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

func findModelPython() string {
	execDir := ""
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".lia", "venv", "bin", "python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if absPath, err := filepath.Abs(path); err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
