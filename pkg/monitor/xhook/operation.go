package xhook

import (
	"fmt"
	"reflect"
	"runtime"
)

// autogenerated 是编译器生成的包装方法（提升方法、值接收者适配）的源文件名。
const autogenerated = "<autogenerated>"

var errorType = reflect.TypeFor[error]()

// Operation 描述一个被拦截的操作。
type Operation struct {
	// Name 方法名。
	Name string
	// Inherited 方法是否由嵌入字段提升而来（尽力判断，仅用于诊断）。
	Inherited bool

	method     reflect.Method
	returnsErr bool
}

// resolveOperation 在 *T 的方法集中查找 name。
//
// 提升方法同样通过 *T 的方法集解析：调用经由 *T 的提升桩，
// 嵌入类型自身的方法不会被改写。
func resolveOperation(ptr reflect.Type, name string) (*Operation, error) {
	m, ok := ptr.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrOperationNotFound, ptr.Elem(), name)
	}
	mt := m.Type
	returnsErr := mt.NumOut() > 0 && mt.Out(mt.NumOut()-1) == errorType
	return &Operation{
		Name:       name,
		Inherited:  isPromoted(ptr, m),
		method:     m,
		returnsErr: returnsErr,
	}, nil
}

// isPromoted 判断方法是否来自嵌入字段且未被 T 自己声明。
func isPromoted(ptr reflect.Type, m reflect.Method) bool {
	elem := ptr.Elem()
	if elem.Kind() != reflect.Struct {
		return false
	}
	provided := false
	for i := range elem.NumField() {
		f := elem.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() != reflect.Pointer {
			ft = reflect.PointerTo(ft)
		}
		if _, ok := ft.MethodByName(m.Name); ok {
			provided = true
			break
		}
	}
	if !provided {
		return false
	}
	if !isGenerated(m.Func) {
		return false
	}
	// 值接收者方法在 *T 方法集中也是生成的适配函数，需要再看 T 的方法集。
	if vm, ok := elem.MethodByName(m.Name); ok && !isGenerated(vm.Func) {
		return false
	}
	return true
}

func isGenerated(fn reflect.Value) bool {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return false
	}
	file, _ := f.FileLine(fn.Pointer())
	return file == autogenerated
}

// prepareArgs 把参数转换为 reflect.Value 并校验签名。第一个入参是接收者。
func prepareArgs(recv reflect.Value, mt reflect.Type, name string, args []any) ([]reflect.Value, error) {
	numIn := mt.NumIn() - 1
	variadic := mt.IsVariadic()
	if (!variadic && len(args) != numIn) || (variadic && len(args) < numIn-1) {
		return nil, fmt.Errorf("%w: %s wants %d args, got %d", ErrInvalidArgument, name, numIn, len(args))
	}
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, recv)
	for i, arg := range args {
		var pt reflect.Type
		if variadic && i >= numIn-1 {
			pt = mt.In(mt.NumIn() - 1).Elem()
		} else {
			pt = mt.In(i + 1)
		}
		v, err := argValue(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("%w: %s arg %d: %w", ErrInvalidArgument, name, i, err)
		}
		in = append(in, v)
	}
	return in, nil
}

func argValue(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), nil
		default:
			return reflect.Value{}, fmt.Errorf("nil for %s", pt)
		}
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(pt) {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("%s not assignable to %s", v.Type(), pt)
}

// splitResults 拆分返回值：末尾的 error 单独返回，其余转为 []any。
func splitResults(out []reflect.Value, returnsErr bool) ([]any, error) {
	var err error
	if returnsErr {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		if !last.IsNil() {
			err, _ = last.Interface().(error)
		}
	}
	if len(out) == 0 {
		return nil, err
	}
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, err
}

// call 执行原始方法并捕获 panic，不做任何监控。
func (op *Operation) call(in []reflect.Value) (results []any, panicked any, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked = r
		}
	}()
	out := op.method.Func.Call(in)
	results, err = splitResults(out, op.returnsErr)
	return results, nil, err
}
