package json

import (
	"errors"
	"time"

	"dario.cat/mergo"

	"github.com/ninja0404/dex-reputation/pkg/config/reader"
	"github.com/ninja0404/dex-reputation/pkg/config/source"
)

const READER_NAME string = "json"

type jsonReader struct {
	opts reader.Options
}

// NewReader creates a json reader
func NewReader(opts ...reader.Option) reader.Reader {
	options := reader.NewOptions(opts...)
	return &jsonReader{
		opts: options,
	}
}

func (j *jsonReader) Merge(changes ...*source.ChangeSet) (*source.ChangeSet, error) {
	var merged map[string]interface{}

	for _, m := range changes {
		if m == nil {
			continue
		}

		if len(m.Data) == 0 {
			continue
		}

		codec, ok := j.opts.Encoding[m.Format]
		if !ok {
			// fallback to json codec
			codec = j.opts.Encoding[READER_NAME]
		}

		var data map[string]interface{}
		if err := codec.Decode(m.Data, &data); err != nil {
			return nil, err
		}
		if err := mergo.Map(&merged, data, mergo.WithOverride); err != nil {
			return nil, err
		}
	}

	codec, ok := j.opts.Encoding[READER_NAME]
	if !ok {
		return nil, errors.New("json encoder not registered")
	}

	b, err := codec.Encode(merged)
	if err != nil {
		return nil, err
	}

	cs := &source.ChangeSet{
		Timestamp: time.Now(),
		Data:      b,
		Format:    codec.String(),
		Source:    "json",
	}
	cs.Checksum = cs.Sum()

	return cs, nil
}

func (j *jsonReader) Values(ch *source.ChangeSet) (reader.Values, error) {
	if ch == nil {
		return nil, errors.New("changeset is nil")
	}
	return newValues(ch)
}

func (j *jsonReader) String() string {
	return READER_NAME
}
