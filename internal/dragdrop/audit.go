package dragdrop

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/wI2L/jsondiff"

	"plantafel/internal/model"
)

// AuditPatch describes what applying u to before changes, as an RFC 6902
// JSON patch over the assignment's wire form. A pruned no-op update yields an
// empty patch.
func AuditPatch(before model.Assignment, u model.AssignmentUpdate) (jsondiff.Patch, error) {
	src, err := json.Marshal(before)
	if err != nil {
		return nil, errors.Wrap(err, "marshal assignment")
	}
	dst, err := json.Marshal(u.Apply(before))
	if err != nil {
		return nil, errors.Wrap(err, "marshal updated assignment")
	}
	patch, err := jsondiff.CompareJSON(src, dst)
	if err != nil {
		return nil, errors.Wrap(err, "diff assignment")
	}
	return patch, nil
}
