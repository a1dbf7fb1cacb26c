package machine

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-zkmips/internal/vybium-zkmips/utils"
)

// ErrShapeTooSmall is returned when a shape fixes a height below the number
// of real rows of a chip.
var ErrShapeTooSmall = errors.New("shape height smaller than real rows")

// paddedHeight returns the height of a trace with nReal real rows. A fixed
// height is used verbatim; otherwise the next power of two above both nReal
// and minRows.
func paddedHeight(nReal, log2Rows int, fixed bool, minRows int) (int, error) {
	if fixed {
		height := 1 << log2Rows
		if nReal > height {
			return 0, fmt.Errorf("%w: %d rows, log2 height %d", ErrShapeTooSmall, nReal, log2Rows)
		}
		return height, nil
	}
	height, _ := utils.PaddedHeight(max(nReal, minRows))
	return height, nil
}
