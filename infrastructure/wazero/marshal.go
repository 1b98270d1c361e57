package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/budget-tools/rateconv/domain/entities"
)

// flatten lowers one value to wasm stack slots.
func flatten(ctx context.Context, mod api.Module, v entities.Value) ([]uint64, []api.ValueType, error) {
	switch v.Kind {
	case entities.KindReal:
		return []uint64{api.EncodeF64(v.Real)}, []api.ValueType{api.ValueTypeF64}, nil
	case entities.KindInteger:
		return []uint64{api.EncodeI32(v.Integer)}, []api.ValueType{api.ValueTypeI32}, nil
	case entities.KindLogical:
		var b int32
		if v.Logical {
			b = 1
		}
		return []uint64{api.EncodeI32(b)}, []api.ValueType{api.ValueTypeI32}, nil
	case entities.KindString:
		ptr, err := writeString(ctx, mod, v.Str)
		if err != nil {
			return nil, nil, err
		}
		return []uint64{api.EncodeU32(ptr), api.EncodeU32(uint32(len(v.Str)))}, //nolint:gosec // G115: bounded by guest memory
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, nil
	default:
		return nil, nil, fmt.Errorf("cannot pass %s to a wasm function", v.Kind)
	}
}

// marshalArgs flattens args and checks them against the function signature.
func marshalArgs(ctx context.Context, mod api.Module, want []api.ValueType, args []entities.Value) ([]uint64, error) {
	params := make([]uint64, 0, len(want))
	types := make([]api.ValueType, 0, len(want))
	for idx, a := range args {
		slots, ts, err := flatten(ctx, mod, a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", idx+1, err)
		}
		params = append(params, slots...)
		types = append(types, ts...)
	}

	if len(types) != len(want) {
		return nil, fmt.Errorf("signature mismatch: function takes %d slots, arguments flatten to %d", len(want), len(types))
	}
	for idx := range want {
		if types[idx] != want[idx] {
			return nil, fmt.Errorf("signature mismatch at slot %d: want %s, got %s",
				idx, api.ValueTypeName(want[idx]), api.ValueTypeName(types[idx]))
		}
	}
	return params, nil
}

// unmarshalResults lifts a wasm result tuple back to a Value.
func unmarshalResults(types []api.ValueType, results []uint64) (entities.Value, error) {
	if len(results) != len(types) {
		return entities.Null, fmt.Errorf("function returned %d results, signature declares %d", len(results), len(types))
	}

	switch {
	case len(types) == 0:
		return entities.Null, nil
	case len(types) == 1 && types[0] == api.ValueTypeF64:
		return entities.Real(api.DecodeF64(results[0])), nil
	case len(types) == 1 && types[0] == api.ValueTypeI32:
		return entities.Integer(api.DecodeI32(results[0])), nil
	case len(types) == 2 && types[0] == api.ValueTypeF64 && types[1] == api.ValueTypeI32:
		if status := api.DecodeI32(results[1]); status != 0 {
			return entities.Null, fmt.Errorf("function reported status %d", status)
		}
		return entities.Real(api.DecodeF64(results[0])), nil
	default:
		return entities.Null, fmt.Errorf("unsupported result signature %v", typeNames(types))
	}
}

// writeString copies s into guest memory allocated by the guest's "allocate" export.
func writeString(ctx context.Context, mod api.Module, s string) (uint32, error) {
	allocate := mod.ExportedFunction("allocate")
	if allocate == nil {
		return 0, fmt.Errorf("guest does not export 'allocate'")
	}
	if mod.Memory() == nil {
		return 0, fmt.Errorf("guest does not export memory")
	}

	res, err := allocate.Call(ctx, uint64(len(s)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}

	ptr := api.DecodeU32(res[0])
	if !mod.Memory().Write(ptr, []byte(s)) {
		return 0, fmt.Errorf("failed to write argument to guest memory")
	}
	return ptr, nil
}

func typeNames(types []api.ValueType) []string {
	names := make([]string, len(types))
	for idx, t := range types {
		names[idx] = api.ValueTypeName(t)
	}
	return names
}
