package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/budget-tools/rateconv/config"
	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
	"github.com/budget-tools/rateconv/host"
)

// runConversion drives one session: start the runtime, attach the library,
// convert, print and shut down. Only a failed start is returned as an error.
// Load and call failures are reported in the printed result.
func runConversion(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	ctx = contextOrBackground(ctx)

	req, err := cfg.Request.ToRequest()
	if err != nil {
		return err
	}

	interp, err := newInterpreter(cfg, logger)
	if err != nil {
		return err
	}

	sess := host.NewSession(interp,
		host.WithHome(cfg.RHome),
		host.WithLogger(logger),
	)
	if err := sess.Initialize(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sess.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	res := entities.Failed[float64]()
	callErr := sess.Library(ctx, cfg.Library)
	if callErr == nil {
		res, callErr = sess.RateConv(ctx, req)
	}
	if callErr != nil {
		logger.Error("conversion failed", "error", callErr)
	}

	return printResult(out, cfg.Output, req, res, callErr)
}

func printResult(out io.Writer, format string, req entities.RateRequest, res entities.FallibleDouble, callErr error) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entities.NewConversionResult(req, res, errors.ToErrorDetail(callErr)))
	}
	_, err := fmt.Fprintf(out, "Result: { %s, %f }\n", entities.BoolToString(res.OK), res.OrZero())
	return err
}
