package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"cloudmask/internal/grid"

	"gocv.io/x/gocv"
)

// Mask values as stored in a CV_8UC1 Mat.
const (
	MaskFalse uint8 = 0
	MaskTrue  uint8 = 255
)

// Mat guards a gocv.Mat against use after Close and double Close.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
	tag     string
}

var (
	createdMats uint64
	activeMats  int64
)

// Stats counts Mats created through this package.
type Stats struct {
	Created uint64
	Active  int64
}

// GetStats returns the process-wide Mat counters. Active drops when a Mat
// is closed, explicitly or by its finalizer.
func GetStats() Stats {
	return Stats{
		Created: atomic.LoadUint64(&createdMats),
		Active:  atomic.LoadInt64(&activeMats),
	}
}

func NewMat(rows, cols int, matType gocv.MatType, tag string) (*Mat, error) {
	if err := ValidateDimensions(cols, rows, tag); err != nil {
		return nil, err
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat, tag), nil
}

// NewMatFromMask encodes a boolean grid as a CV_8UC1 Mat (true = 255).
func NewMatFromMask(m *grid.Mask, tag string) (*Mat, error) {
	if m == nil {
		return nil, fmt.Errorf("nil mask for %s", tag)
	}
	if err := ValidateDimensions(m.Cols, m.Rows, tag); err != nil {
		return nil, err
	}

	data := make([]byte, len(m.Data))
	for i, v := range m.Data {
		if v {
			data[i] = MaskTrue
		}
	}

	// NewMatFromBytes may alias data, so clone into OpenCV-owned memory.
	view, err := gocv.NewMatFromBytes(m.Rows, m.Cols, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from mask: %w", err)
	}
	defer view.Close()

	cloned := view.Clone()
	if cloned.Empty() {
		cloned.Close()
		return nil, fmt.Errorf("failed to clone mask Mat for %s", tag)
	}

	return wrap(cloned, tag), nil
}

func wrap(mat gocv.Mat, tag string) *Mat {
	sm := &Mat{
		mat:     mat,
		isValid: 1,
		tag:     tag,
	}
	atomic.AddUint64(&createdMats, 1)
	atomic.AddInt64(&activeMats, 1)
	runtime.SetFinalizer(sm, (*Mat).finalize)
	return sm
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}
	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Cols()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}
	return sm.mat.Type()
}

// GetMat exposes the underlying Mat for gocv calls. The returned value
// shares memory with sm and must not be closed by the caller.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

// Ptr returns a pointer to the underlying Mat for use as a gocv output.
func (sm *Mat) Ptr() *gocv.Mat {
	return &sm.mat
}

// ToMask decodes a CV_8UC1 Mat; any nonzero byte is true.
func (sm *Mat) ToMask() (*grid.Mask, error) {
	if err := ValidateMatForOperation(sm, "ToMask"); err != nil {
		return nil, err
	}
	if t := sm.Type(); t != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("ToMask requires CV_8UC1, got MatType %d", int(t))
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	raw := sm.mat.ToBytes()
	out := grid.NewMask(sm.mat.Rows(), sm.mat.Cols())
	if len(raw) != len(out.Data) {
		return nil, fmt.Errorf("Mat %s holds %d bytes, want %d", sm.tag, len(raw), len(out.Data))
	}
	for i, b := range raw {
		out.Data[i] = b != MaskFalse
	}
	return out, nil
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if !sm.mat.Empty() {
			sm.mat.Close()
		}
		atomic.AddInt64(&activeMats, -1)
		runtime.SetFinalizer(sm, nil)
	}
}

func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
