package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// UploadIO wraps "bytes to upload" decoupled from how those bytes are
// obtained: a file path, an open handle, a raw buffer, or any reader. The
// transport streams it as a multipart field, so the payload never travels
// inside the argument mapping itself.
type UploadIO struct {
	reader      io.Reader
	path        string
	contentType string
}

// NewUploadIO builds an upload wrapper from a heterogeneous source. Accepted
// sources are *UploadIO (re-wrapped, optionally overriding the content type),
// *os.File, io.Reader, []byte, and string file paths. contentType may be
// empty.
func NewUploadIO(source interface{}, contentType string) (*UploadIO, error) {
	switch src := source.(type) {
	case *UploadIO:
		wrapped := *src
		if contentType != "" {
			wrapped.contentType = contentType
		}

		return &wrapped, nil

	case *os.File:
		return &UploadIO{reader: src, path: src.Name(), contentType: contentType}, nil

	case io.Reader:
		return &UploadIO{reader: src, contentType: contentType}, nil

	case []byte:
		return &UploadIO{reader: bytes.NewReader(src), contentType: contentType}, nil

	case string:
		// A plain string is a file path; it is opened lazily at send time.
		return &UploadIO{path: src, contentType: contentType}, nil

	default:
		return nil, fmt.Errorf("%w: cannot upload from %T", ErrInvalidArguments, source)
	}
}

// ContentType returns the content-type hint, or empty when none was given.
func (u *UploadIO) ContentType() string {
	return u.contentType
}

// Filename returns the multipart filename for this source.
func (u *UploadIO) Filename() string {
	if u.path != "" {
		return filepath.Base(u.path)
	}

	return "upload"
}

// Open returns the byte stream to send. Path-backed sources open the file;
// reader-backed sources hand out their reader, which means a reader-backed
// UploadIO can be sent only once.
func (u *UploadIO) Open() (io.ReadCloser, error) {
	if u.reader != nil {
		if closer, ok := u.reader.(io.ReadCloser); ok {
			return closer, nil
		}

		return io.NopCloser(u.reader), nil
	}

	file, err := os.Open(u.path)
	if err != nil {
		return nil, fmt.Errorf("opening upload source: %w", err)
	}

	return file, nil
}

// normalizeMediaArgs turns the variadic, shape-ambiguous argument list of the
// media verbs into a canonical (target, args, options) tuple. Shapes are
// disambiguated by position and runtime type:
//
//	[url, args?, target?, options?]
//	[source, contentType?, args?, target?, options?]
//
// A URL-string first value lands under the "url" key and consumes no
// content-type slot; any other first value becomes an *UploadIO under
// "source". The target defaults to "me".
func normalizeMediaArgs(raw []interface{}) (string, Params, *RequestOptions, error) {
	const maxMediaArgs = 5

	// Nil positions mean "not given"; drop them so optional slots can be
	// skipped explicitly.
	compact := raw[:0:0]

	for _, arg := range raw {
		if arg != nil {
			compact = append(compact, arg)
		}
	}

	raw = compact

	if len(raw) < 1 || len(raw) > maxMediaArgs {
		return "", nil, nil, fmt.Errorf("%w: media call takes 1 to %d arguments, got %d",
			ErrInvalidArguments, maxMediaArgs, len(raw))
	}

	target := "me"
	params := Params{}

	var opts *RequestOptions

	rest := raw[1:]

	if url, ok := raw[0].(string); ok && isAbsoluteURL(url) {
		params["url"] = url
	} else {
		contentType := ""

		if len(rest) > 0 {
			if hint, ok := rest[0].(string); ok {
				contentType = hint
				rest = rest[1:]
			}
		}

		source, err := NewUploadIO(raw[0], contentType)
		if err != nil {
			return "", nil, nil, err
		}

		params["source"] = source
	}

	if len(rest) > 0 {
		if args, ok := toParams(rest[0]); ok {
			for key, value := range args {
				params[key] = value
			}

			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		if id, ok := rest[0].(string); ok {
			target = id
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		if options, ok := rest[0].(*RequestOptions); ok {
			opts = options
			rest = rest[1:]
		}
	}

	if len(rest) > 0 {
		return "", nil, nil, fmt.Errorf("%w: unexpected media argument of type %T",
			ErrInvalidArguments, rest[0])
	}

	return target, params, opts, nil
}

func toParams(value interface{}) (Params, bool) {
	switch args := value.(type) {
	case Params:
		return args, true
	case map[string]interface{}:
		return args, true
	default:
		return nil, false
	}
}
