package json

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/drakos74/kcurves/internal/storage"
	"github.com/drakos74/kcurves/internal/storage/file"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

const ext = ".json"

// Matrix is the json representation of a dense matrix.
type Matrix struct {
	Rows int         `json:"rows"`
	Cols int         `json:"cols"`
	Data [][]float64 `json:"data"`
}

// BlobStorage stores every key as a json file.
type BlobStorage struct {
	compress bool
	indent   bool
	debug    bool
}

// NewJsonBlob creates a new json storage.
func NewJsonBlob(compress, debug bool) *BlobStorage {
	return &BlobStorage{
		compress: compress,
		debug:    debug,
	}
}

// Indented makes the storage write human readable files.
func (s *BlobStorage) Indented() *BlobStorage {
	s.indent = true
	return s
}

func (s *BlobStorage) Store(k storage.Key, value interface{}) error {
	if m, ok := value.(*mat.Dense); ok {
		value = toMatrix(m)
	}

	var b []byte
	var err error
	if s.indent {
		b, err = json.MarshalIndent(value, "", "  ")
	} else {
		b, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("could not encode key '%+v': %w", k, err)
	}

	f, p, err := file.Create(k.Path(), ext, s.compress)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("could not write bytes to file '%s' : %w", p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close file '%s' : %w", p, err)
	}
	if s.debug {
		log.Info().Str("file", p).Msg("stored json file")
	}
	return nil
}

func (s *BlobStorage) Load(k storage.Key, value interface{}) error {
	f, p, err := file.Open(k.Path(), ext)
	if err != nil {
		return fmt.Errorf("could not read file for '%v' %s: %w", k, err.Error(), storage.NotFoundErr)
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		return fmt.Errorf("could not read file '%s' %s: %w", p, err.Error(), storage.CouldNotLoadErr)
	}

	if m, ok := value.(*mat.Dense); ok {
		var matrix Matrix
		if err := json.Unmarshal(data, &matrix); err != nil {
			return fmt.Errorf("could not unmarshal key '%v': %s: %w", k, err.Error(), storage.CouldNotLoadErr)
		}
		return fromMatrix(matrix, m)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("could not unmarshal key '%v': %s: %w", k, err.Error(), storage.CouldNotLoadErr)
	}
	return nil
}

func toMatrix(m *mat.Dense) Matrix {
	r, c := m.Dims()
	data := make([][]float64, r)
	for i := 0; i < r; i++ {
		data[i] = mat.Row(nil, i, m)
	}
	return Matrix{
		Rows: r,
		Cols: c,
		Data: data,
	}
}

func fromMatrix(matrix Matrix, m *mat.Dense) error {
	if matrix.Rows == 0 || matrix.Cols == 0 {
		*m = mat.Dense{}
		return nil
	}
	if len(matrix.Data) != matrix.Rows {
		return fmt.Errorf("expected %d rows, got %d: %w", matrix.Rows, len(matrix.Data), storage.CouldNotLoadErr)
	}
	flat := make([]float64, 0, matrix.Rows*matrix.Cols)
	for i, row := range matrix.Data {
		if len(row) != matrix.Cols {
			return fmt.Errorf("expected %d columns at row %d, got %d: %w", matrix.Cols, i, len(row), storage.CouldNotLoadErr)
		}
		flat = append(flat, row...)
	}
	*m = *mat.NewDense(matrix.Rows, matrix.Cols, flat)
	return nil
}
