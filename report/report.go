package report

import (
	"time"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/msduration"
)

// Report is a single report after its body has been parsed into the concrete
// payload type B.
type Report[B any] struct {
	// Age is the time between when the report was generated by the client
	// and when it was uploaded.
	Age time.Duration
	// URL of the request or document the report describes.
	URL string
	// UserAgent is the client's User-Agent value.
	UserAgent string
	// Body is the typed report body.
	Body B
}

// ComposeBare re-encodes a typed report into its opaque envelope form.
// It is the structural inverse of ParseAs: ParseAs(ComposeBare(r)) yields a
// report equal to r.
func ComposeBare[B any, P BodyPtr[B]](r Report[B]) (BareReport, error) {
	body := P(&r.Body)
	data, err := body.MarshalJSON()
	if err != nil {
		return BareReport{}, errors.WrapInvalid(err, "Report", "ComposeBare", "body encode")
	}
	return BareReport{
		Age:       msduration.From(r.Age),
		URL:       r.URL,
		UserAgent: r.UserAgent,
		Type:      body.Kind(),
		Body:      data,
	}, nil
}
