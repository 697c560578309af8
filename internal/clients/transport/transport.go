// transport предоставляет набор обёрток http.RoundTripper для исходящих
// вызовов к upstream API: метаданные, таймаут, логирование, метрики.
package transport

import "net/http"

// RoundTripperFunc — адаптер функции к http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Decorator оборачивает RoundTripper.
type Decorator func(http.RoundTripper) http.RoundTripper

// Chain применяет декораторы к base в порядке перечисления:
// первый декоратор — внешний.
func Chain(base http.RoundTripper, ds ...Decorator) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	for i := len(ds) - 1; i >= 0; i-- {
		base = ds[i](base)
	}

	return base
}
