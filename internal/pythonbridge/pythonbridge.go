// Package pythonbridge implements the `validate_python_import` capability
// spec.md §4.5 describes: the core never executes Python, it only checks
// that an `import foo.py` resolves to a real module whose declared
// signature is well-formed, and records an opaque Handle for it.
//
// Validation reads a sidecar `<name>.protoset` file next to the `.py`
// import — a serialized descriptorpb.FileDescriptorSet describing the
// Python function's declared parameter/return shape — and parses it with
// github.com/jhump/protoreflect without invoking anything. This mirrors
// the teacher's internal/evaluator/builtins_grpc.go, which walks
// dynamically loaded proto descriptors (desc.FileDescriptor/
// MessageDescriptor) the same way, just for a gRPC invocation path
// instead of a signature check.
package pythonbridge

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/oneil-lang/oneil/internal/model"
)

// FileReader is the capability Bridge reads sidecar descriptor bytes
// through; injected so tests can validate imports without real files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads descriptor sidecars from the local filesystem.
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Handle is the opaque result of a validated Python import. spec.md §1
// leaves actual Python invocation abstract ("the core only validates...
// actual Python invocation is left abstract").
type Handle struct {
	Path       model.PythonPath
	Descriptor *desc.FileDescriptor
}

// Bridge validates `.py` imports and remembers the Handle for each
// successfully validated one, keyed by path — the "handle" spec.md §4.5
// says the core records once an import resolves.
type Bridge struct {
	files FileReader

	mu      sync.RWMutex
	handles map[model.PythonPath]*Handle
}

// New creates a Bridge backed by files.
func New(files FileReader) *Bridge {
	return &Bridge{files: files, handles: make(map[model.PythonPath]*Handle)}
}

// ValidatePythonImport implements resolver.PythonValidator: it locates
// path's sidecar descriptor, parses it, and records a Handle. It never
// executes path itself.
func (b *Bridge) ValidatePythonImport(path model.PythonPath) error {
	sidecar := sidecarPath(path)
	raw, err := b.files.ReadFile(sidecar)
	if err != nil {
		return fmt.Errorf("python import %q: missing signature descriptor %q: %w", path, sidecar, err)
	}

	var fdSet descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(raw, &fdSet); err != nil {
		return fmt.Errorf("python import %q: %q is not a valid FileDescriptorSet: %w", path, sidecar, err)
	}
	if len(fdSet.File) == 0 {
		return fmt.Errorf("python import %q: %q declares no descriptors", path, sidecar)
	}

	files, err := desc.CreateFileDescriptorsFromSet(&fdSet)
	if err != nil {
		return fmt.Errorf("python import %q: %w", path, err)
	}

	fd, err := primaryDescriptor(files, &fdSet)
	if err != nil {
		return fmt.Errorf("python import %q: %w", path, err)
	}

	b.mu.Lock()
	b.handles[path] = &Handle{Path: path, Descriptor: fd}
	b.mu.Unlock()
	return nil
}

// Handle returns the recorded handle for a previously validated import.
func (b *Bridge) Handle(path model.PythonPath) (*Handle, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.handles[path]
	return h, ok
}

// sidecarPath swaps path's ".py" extension for ".protoset".
func sidecarPath(path model.PythonPath) string {
	return strings.TrimSuffix(path.String(), ".py") + ".protoset"
}

// primaryDescriptor picks the descriptor for the FileDescriptorSet's own
// last entry — the convention protoc and protoparse use for "the file
// that was actually compiled", with every earlier entry being a
// dependency pulled in for type resolution.
func primaryDescriptor(files map[string]*desc.FileDescriptor, fdSet *descriptorpb.FileDescriptorSet) (*desc.FileDescriptor, error) {
	last := fdSet.File[len(fdSet.File)-1]
	fd, ok := files[last.GetName()]
	if !ok {
		return nil, fmt.Errorf("descriptor set missing file %q after parsing", last.GetName())
	}
	return fd, nil
}
