package detector

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
	"time"

	"gocv.io/x/gocv"
)

// MediaPipeDetector implements Detector using a Python MediaPipe face mesh
// subprocess. Frames are sent as length-prefixed JPEG data on stdin; the
// service answers with one JSON line per frame.
type MediaPipeDetector struct {
	config    Config
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastUsed  time.Time
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe face detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	scriptPath := findFaceMeshScript()
	if scriptPath == "" {
		return nil, fmt.Errorf("facemesh_service.py not found")
	}

	return &MediaPipeDetector{
		config: config,
	}, nil
}

// Detect analyzes a frame and returns landmarks for each detected face.
// The call is bounded by the configured timeout; on timeout the subprocess
// is restarted so a late answer cannot be mistaken for the next frame's.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]FaceLandmarks, error) {
	if err := ValidateFrame(frame); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	// Encode frame as JPEG
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Write length (4 bytes big-endian) + data
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.readResponse()
	if err != nil {
		return nil, err
	}

	var response struct {
		Faces []jsonFace `json:"faces"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	// Convert to FaceLandmarks, honoring the face cap and confidence floor
	result := make([]FaceLandmarks, 0, len(response.Faces))
	for _, f := range response.Faces {
		if f.Score < d.config.MinConfidence {
			continue
		}
		if d.config.MaxFaces > 0 && len(result) >= d.config.MaxFaces {
			break
		}
		result = append(result, f.toFaceLandmarks())
	}

	d.lastUsed = time.Now()
	d.resetIdleTimer()

	return result, nil
}

// readResponse reads one JSON line from the service, bounded by the
// configured timeout. Caller holds d.mu.
func (d *MediaPipeDetector) readResponse() (string, error) {
	timeout := d.config.Timeout
	if timeout <= 0 {
		line, err := d.stdout.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		return line, nil
	}

	type readResult struct {
		line string
		err  error
	}
	ch := make(chan readResult, 1)
	stdout := d.stdout
	go func() {
		line, err := stdout.ReadString('\n')
		ch <- readResult{line, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("read response: %w", res.err)
		}
		return res.line, nil
	case <-time.After(timeout):
		// The pending read would desynchronize the protocol, so drop the
		// whole subprocess and start fresh on the next call.
		d.shutdown()
		return "", ErrDetectTimeout
	}
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	scriptPath := findFaceMeshScript()
	if scriptPath == "" {
		return fmt.Errorf("facemesh_service.py not found")
	}

	// Use virtual environment Python if available
	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	d.cmd = exec.Command(pythonPath, scriptPath)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start facemesh service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.lastUsed = time.Now()

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(30*time.Second, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findFaceMeshScript() string {
	// Allow an explicit override for deployments
	if path := os.Getenv("DRISHTI_FACEMESH_SCRIPT"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/facemesh_service.py",
		"../scripts/facemesh_service.py",
		filepath.Join(execDir, "scripts/facemesh_service.py"),
		filepath.Join(os.Getenv("HOME"), ".drishti/scripts/facemesh_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
// It checks for venv/bin/python relative to the project directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".drishti/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonFace represents the JSON structure from the Python service.
type jsonFace struct {
	Points []jsonPoint `json:"points"`
	Score  float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (f jsonFace) toFaceLandmarks() FaceLandmarks {
	lm := FaceLandmarks{
		Score: f.Score,
	}

	for i := 0; i < NumLandmarks && i < len(f.Points); i++ {
		lm.Points[i] = Point3D{
			X: f.Points[i].X,
			Y: f.Points[i].Y,
			Z: f.Points[i].Z,
		}
	}

	return lm
}
