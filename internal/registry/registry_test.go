package registry

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func echoHandler(_ context.Context, args json.RawMessage) (interface{}, error) {
	var m map[string]interface{}
	if err := Decode(args, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func TestRegisterAndInvoke(t *testing.T) {
	reg := New()
	if err := reg.Register("echo", "echo back the args", echoHandler); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := reg.Invoke(context.Background(), "echo", json.RawMessage(`{"a":1}`))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	m, ok := result.(map[string]interface{})
	if !ok || m["a"] != float64(1) {
		t.Errorf("result = %#v", result)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	reg := New()
	if err := reg.Register("echo", "", echoHandler); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("echo", "", echoHandler); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	reg := New()
	_, err := reg.Invoke(context.Background(), "missing", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestInvokeEmptyArgsDefaultsToObject(t *testing.T) {
	reg := New()
	reg.MustRegister("echo", "", echoHandler)

	result, err := reg.Invoke(context.Background(), "echo", nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	m, ok := result.(map[string]interface{})
	if !ok || len(m) != 0 {
		t.Errorf("result = %#v, want empty object", result)
	}
}

func TestNamesSorted(t *testing.T) {
	reg := New()
	reg.MustRegister("zeta", "", echoHandler)
	reg.MustRegister("alpha", "", echoHandler)
	reg.MustRegister("mid", "", echoHandler)

	want := []string{"alpha", "mid", "zeta"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestDecodeMapsErrorsToInvalidArgs(t *testing.T) {
	var into struct {
		N int `json:"n"`
	}
	err := Decode(json.RawMessage(`{"n":"not a number"}`), &into)
	if !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("expected ErrInvalidArgs, got %v", err)
	}
}
