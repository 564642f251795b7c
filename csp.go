package cspace

import (
	"bytes"
	"fmt"
	"io"

	"github.com/absfs/absfs"

	"github.com/absfs/cspace/internal/qstream"
	"github.com/absfs/cspace/vfs"
)

// ReadObject decodes a configuration object: a uint32 type tag followed by
// the payload of that kind. Every failure is reported as ErrLoadFailed; the
// cause is logged.
func ReadObject(r io.Reader, opts *Options) (*Object, error) {
	o := opts.withDefaults()
	obj, err := readObject(r, &o)
	if err != nil {
		o.Logger.Warn("failed to load configuration object", "error", err)
		return nil, ErrLoadFailed
	}
	return obj, nil
}

func readObject(r io.Reader, o *Options) (*Object, error) {
	qr := qstream.NewReader(r)
	tag := Kind(qr.Uint32())
	if err := qr.Err(); err != nil {
		return nil, fmt.Errorf("%w: type tag: %v", ErrMalformedStream, err)
	}

	switch tag {
	case KindRaster:
		s, err := ReadRasterSpace(r, o)
		if err != nil {
			return nil, err
		}
		return NewRasterObject(s), nil
	case KindCell:
		s, err := ReadCellSpace(r, o)
		if err != nil {
			return nil, err
		}
		return NewCellObject(s), nil
	case KindExact:
		s, err := ReadExactSpace(r, o)
		if err != nil {
			return nil, err
		}
		return NewExactObject(s), nil
	case KindRoute:
		return nil, fmt.Errorf("%w: routes are not persisted", ErrUnsupported)
	}
	return nil, fmt.Errorf("%w: unknown type tag %d", ErrMalformedStream, uint32(tag))
}

// WriteObject encodes obj, compressing raster voxels with opts.Codec. Cell,
// exact and route objects cannot be saved.
// Every failure is reported as ErrSaveFailed; the cause is logged.
func WriteObject(w io.Writer, obj *Object, opts *Options) error {
	o := opts.withDefaults()
	if err := writeObject(w, obj, &o); err != nil {
		o.Logger.Warn("failed to save configuration object", "kind", obj.Kind().String(), "error", err)
		return ErrSaveFailed
	}
	return nil
}

// writeObject compresses raster payloads with o.Codec.
func writeObject(w io.Writer, obj *Object, o *Options) error {
	if obj.Space() == nil {
		return fmt.Errorf("%w: %v object has no space", ErrUnsupported, obj.Kind())
	}

	// the payload is encoded before the tag so nothing is written on failure
	var payload bytes.Buffer
	var err error
	switch obj.Kind() {
	case KindRaster:
		err = obj.raster.save(&payload, o.Codec)
	case KindCell:
		err = obj.cell.Save(&payload)
	case KindExact:
		err = obj.exact.Save(&payload)
	case KindRoute:
		err = fmt.Errorf("%w: routes are not persisted", ErrUnsupported)
	default:
		err = fmt.Errorf("%w: kind %d", ErrUnsupported, uint32(obj.Kind()))
	}
	if err != nil {
		return err
	}

	qw := qstream.NewWriter(w)
	qw.Uint32(uint32(obj.Kind()))
	if err := qw.Err(); err != nil {
		return err
	}
	_, err = payload.WriteTo(w)
	return err
}

// LoadObject reads a ".csp" file from fsys.
func LoadObject(fsys absfs.Filer, name string, opts *Options) (*Object, error) {
	o := opts.withDefaults()
	data, err := vfs.ReadFile(fsys, name)
	if err != nil {
		o.Logger.Warn("failed to load configuration object", "file", name, "error", err)
		return nil, ErrLoadFailed
	}
	obj, err := readObject(bytes.NewReader(data), &o)
	if err != nil {
		o.Logger.Warn("failed to load configuration object", "file", name, "error", err)
		return nil, ErrLoadFailed
	}
	return obj, nil
}

// SaveObject writes obj to a ".csp" file in fsys. The file is only created
// when encoding succeeds.
func SaveObject(fsys absfs.Filer, name string, obj *Object, opts *Options) error {
	o := opts.withDefaults()
	var buf bytes.Buffer
	err := writeObject(&buf, obj, &o)
	if err == nil {
		err = vfs.WriteFile(fsys, name, buf.Bytes(), 0o644)
	}
	if err != nil {
		o.Logger.Warn("failed to save configuration object", "file", name, "kind", obj.Kind().String(), "error", err)
		return ErrSaveFailed
	}
	return nil
}
