package labs

import "github.com/san-kum/physlab/internal/dynamo"

// Surface is a drawing target in lab coordinates (cm, y pointing down).
// Fit must be called first; it maps a w x h region onto the target with
// margin spare on every side.
type Surface interface {
	Fit(w, h, margin float64)
	Line(a, b dynamo.Vec)
	Rect(lo, hi dynamo.Vec)
	Circle(centre dynamo.Vec, r float64)
	Dot(p dynamo.Vec)
}
