//go:build cgo && rembed

package rembed

/*
#cgo pkg-config: libR
#define R_NO_REMAP
#define CSTACK_DEFNS
#include <stdint.h>
#include <stdlib.h>
#include <string.h>
#include <Rinternals.h>
#include <Rembedded.h>
#include <Rinterface.h>

enum { RH_NULL = 0, RH_REAL, RH_INTEGER, RH_STRING, RH_LOGICAL };

typedef struct {
	const char *str;
	double real;
	int kind;
	int integer;
} rh_value;

static int rh_start(int argc, char **argv) {
	// Go owns the signal handlers.
	R_SignalHandlers = 0;
	if (Rf_initialize_R(argc, argv) != 0) {
		return -1;
	}
	// Go-created threads do not match R's stack heuristics.
	R_CStackLimit = (uintptr_t)-1;
	R_Interactive = FALSE;
	setup_Rmainloop();
	return 0;
}

static void rh_end(void) {
	Rf_endEmbeddedR(0);
}

static SEXP rh_scalar(const rh_value *v) {
	switch (v->kind) {
	case RH_REAL:
		return Rf_ScalarReal(v->real);
	case RH_INTEGER:
		return Rf_ScalarInteger(v->integer);
	case RH_STRING:
		return Rf_mkString(v->str);
	case RH_LOGICAL:
		return Rf_ScalarLogical(v->integer);
	default:
		return R_NilValue;
	}
}

static char *rh_last_error(void) {
	int err = 0;
	SEXP expr = PROTECT(Rf_lang1(Rf_install("geterrmessage")));
	SEXP msg = R_tryEval(expr, R_GlobalEnv, &err);
	char *out;
	if (err || TYPEOF(msg) != STRSXP || Rf_length(msg) == 0) {
		out = strdup("unknown R error");
	} else {
		out = strdup(CHAR(STRING_ELT(msg, 0)));
	}
	UNPROTECT(1);
	return out;
}

// rh_read stores the first element of res in out. NA and empty vectors
// become RH_NULL.
static void rh_read(SEXP res, rh_value *out) {
	out->kind = RH_NULL;
	if (res == R_NilValue || Rf_length(res) == 0) {
		return;
	}
	switch (TYPEOF(res)) {
	case REALSXP:
		if (!R_IsNA(REAL(res)[0])) {
			out->kind = RH_REAL;
			out->real = REAL(res)[0];
		}
		break;
	case INTSXP:
		if (INTEGER(res)[0] != NA_INTEGER) {
			out->kind = RH_INTEGER;
			out->integer = INTEGER(res)[0];
		}
		break;
	case LGLSXP:
		if (LOGICAL(res)[0] != NA_LOGICAL) {
			out->kind = RH_LOGICAL;
			out->integer = LOGICAL(res)[0];
		}
		break;
	case STRSXP:
		if (STRING_ELT(res, 0) != NA_STRING) {
			out->kind = RH_STRING;
			out->str = strdup(CHAR(STRING_ELT(res, 0)));
		}
		break;
	}
}

// rh_eval evaluates fn(args...) in the global environment. It returns 0 on
// success and 1 when R raised an error, in which case *errmsg is set.
static int rh_eval(const char *fn, const rh_value *args, int n, rh_value *out, char **errmsg) {
	PROTECT_INDEX ipx;
	SEXP list = R_NilValue;
	PROTECT_WITH_INDEX(list, &ipx);
	for (int i = n - 1; i >= 0; i--) {
		REPROTECT(list = Rf_cons(rh_scalar(&args[i]), list), ipx);
	}
	SEXP call = PROTECT(Rf_lcons(Rf_install(fn), list));

	int err = 0;
	SEXP res = R_tryEval(call, R_GlobalEnv, &err);
	if (err) {
		UNPROTECT(2);
		*errmsg = rh_last_error();
		return 1;
	}
	PROTECT(res);
	rh_read(res, out);
	UNPROTECT(3);
	return 0;
}
*/
import "C"

import (
	"context"
	"fmt"
	"strings"
	"unsafe"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/errors"
)

// Available reports whether embedded R was compiled in.
const Available = true

// Start boots R on a dedicated OS thread. It succeeds once per process.
func (i *Interpreter) Start(ctx context.Context, args []string) error {
	i.worker = newWorker()
	var rc C.int
	err := startOnce(ctx, i.worker, func() {
		argv := C.malloc(C.size_t(len(args)) * C.size_t(unsafe.Sizeof(uintptr(0))))
		defer C.free(argv)
		cargs := unsafe.Slice((**C.char)(argv), len(args))
		for idx, a := range args {
			cargs[idx] = C.CString(a)
		}
		defer func() {
			for _, p := range cargs {
				C.free(unsafe.Pointer(p))
			}
		}()
		rc = C.rh_start(C.int(len(args)), (**C.char)(argv))
	})
	if err != nil {
		i.worker.close()
		return err
	}
	if rc != 0 {
		i.worker.close()
		return fmt.Errorf("R initialisation failed (is R_HOME set?)")
	}

	i.running = true
	i.logger.Debug("embedded R started", "args", args)
	return nil
}

// Eval implements ports.Interpreter.
func (i *Interpreter) Eval(ctx context.Context, call entities.Call) (entities.Value, error) {
	if !i.running || i.stopped {
		return entities.Null, errors.ErrNotRunning
	}

	var (
		val     entities.Value
		evalErr error
	)
	if err := i.worker.do(ctx, func() { val, evalErr = eval(call) }); err != nil {
		return entities.Null, err
	}
	return val, evalErr
}

// Stop ends the embedded R session. R cannot be restarted afterwards.
func (i *Interpreter) Stop(ctx context.Context) error {
	if !i.running || i.stopped {
		return errors.ErrNotRunning
	}
	i.stopped = true
	err := i.worker.do(ctx, func() { C.rh_end() })
	i.worker.close()
	return err
}

// eval must run on the worker thread.
func eval(call entities.Call) (entities.Value, error) {
	fn := C.CString(call.Function)
	defer C.free(unsafe.Pointer(fn))

	n := len(call.Args)
	var args *C.rh_value
	if n > 0 {
		args = (*C.rh_value)(C.calloc(C.size_t(n), C.size_t(unsafe.Sizeof(C.rh_value{}))))
		defer C.free(unsafe.Pointer(args))
	}
	cargs := unsafe.Slice(args, n)
	for idx, a := range call.Args {
		switch a.Kind {
		case entities.KindReal:
			cargs[idx].kind = C.RH_REAL
			cargs[idx].real = C.double(a.Real)
		case entities.KindInteger:
			cargs[idx].kind = C.RH_INTEGER
			cargs[idx].integer = C.int(a.Integer)
		case entities.KindString:
			cargs[idx].kind = C.RH_STRING
			cargs[idx].str = C.CString(a.Str)
			defer C.free(unsafe.Pointer(cargs[idx].str))
		case entities.KindLogical:
			cargs[idx].kind = C.RH_LOGICAL
			if a.Logical {
				cargs[idx].integer = 1
			}
		default:
			cargs[idx].kind = C.RH_NULL
		}
	}

	var (
		out    C.rh_value
		errmsg *C.char
	)
	if C.rh_eval(fn, args, C.int(n), &out, &errmsg) != 0 {
		defer C.free(unsafe.Pointer(errmsg))
		return entities.Null, fmt.Errorf("%s", strings.TrimSpace(C.GoString(errmsg)))
	}

	switch out.kind {
	case C.RH_REAL:
		return entities.Real(float64(out.real)), nil
	case C.RH_INTEGER:
		return entities.Integer(int32(out.integer)), nil
	case C.RH_LOGICAL:
		return entities.Logical(out.integer != 0), nil
	case C.RH_STRING:
		defer C.free(unsafe.Pointer(out.str))
		return entities.String(C.GoString(out.str)), nil
	default:
		return entities.Null, nil
	}
}
