package nfilter

import (
	"fmt"

	"github.com/muir/fruitstand/nvelope"
)

// Logging logs before calling the rest of the chain and logs the
// result that comes back.  Placed ahead of a validator, it logs the
// validator's rejection.
func Logging(log nvelope.BasicLogger) *NamedInterceptor {
	return Named("log", InterceptorFunc(func(c *Context, next Handler) (nvelope.Response, error) {
		var endpoint string
		if d := c.Descriptor(); d != nil {
			endpoint = d.Name
		}
		nvelope.Info(log, "Executing filter", map[string]interface{}{
			"endpoint": endpoint,
		})
		model, err := next(c)
		fields := map[string]interface{}{
			"endpoint": endpoint,
			"status":   nvelope.StatusOf(model, err),
			"result":   fmt.Sprintf("%T", model),
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		nvelope.Info(log, "Handler result", fields)
		return model, err
	}))
}
