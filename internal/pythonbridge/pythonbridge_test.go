package pythonbridge_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/oneil-lang/oneil/internal/model"
	"github.com/oneil-lang/oneil/internal/pythonbridge"
)

type mapFileReader map[string][]byte

func (m mapFileReader) ReadFile(path string) ([]byte, error) {
	raw, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return raw, nil
}

func descriptorSetBytes(t *testing.T) []byte {
	t.Helper()
	fdProto := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("calc.proto"),
		Package: proto.String("calc"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Args"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{
						Name:   proto.String("x"),
						Number: proto.Int32(1),
						Type:   descriptorpb.FieldDescriptorProto_TYPE_DOUBLE.Enum(),
						Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					},
				},
			},
		},
	}
	fdSet := &descriptorpb.FileDescriptorSet{File: []*descriptorpb.FileDescriptorProto{fdProto}}
	raw, err := proto.Marshal(fdSet)
	require.NoError(t, err)
	return raw
}

func TestValidatePythonImportParsesSidecarDescriptor(t *testing.T) {
	files := mapFileReader{"calc.protoset": descriptorSetBytes(t)}
	b := pythonbridge.New(files)

	pp, err := model.NewPythonPath("calc")
	require.NoError(t, err)

	require.NoError(t, b.ValidatePythonImport(pp))

	h, ok := b.Handle(pp)
	require.True(t, ok)
	require.Equal(t, "calc.proto", h.Descriptor.GetName())
}

func TestValidatePythonImportFailsWithoutSidecar(t *testing.T) {
	b := pythonbridge.New(mapFileReader{})
	pp, err := model.NewPythonPath("missing")
	require.NoError(t, err)

	err = b.ValidatePythonImport(pp)
	require.Error(t, err)

	_, ok := b.Handle(pp)
	require.False(t, ok)
}

func TestValidatePythonImportRejectsGarbageDescriptor(t *testing.T) {
	files := mapFileReader{"bad.protoset": []byte("not a protobuf message \xff\xff")}
	b := pythonbridge.New(files)
	pp, err := model.NewPythonPath("bad")
	require.NoError(t, err)

	require.Error(t, b.ValidatePythonImport(pp))
}
