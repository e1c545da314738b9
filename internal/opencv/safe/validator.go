package safe

import (
	"fmt"
)

// MaxDimension bounds either side of a Mat. OpenCV indexes rows and columns
// with int32, and a Landsat scene is well under this.
const MaxDimension = 1 << 20

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

// ValidateKernel checks a structuring element size.
func ValidateKernel(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid kernel %dx%d for operation: %s", width, height, operation)
	}

	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("kernel %dx%d exceeds maximum size for operation: %s", width, height, operation)
	}

	return nil
}
