package state

import (
	"io/ioutil"
	"os"
	"path"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/billpipe/config"
)

// Store persists pipeline state between runs.
// State is keyed by pipeline name and resource (target table) name.
// The orchestrator loads state once at run start and saves it once at run end,
// so a run killed part-way leaves the last durable snapshot intact and the
// next run safely re-loads anything that was in flight.
type Store interface {
	LoadState(pipeline, resource string) (map[string]interface{}, error)
	SaveState(pipeline, resource string, data map[string]interface{}) error
}

// FileStore keeps one YAML file per pipeline under dir.
// Files use JSON-compatible YAML so entries decode to plain string-keyed maps.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted in the billpipe home directory.
func NewFileStore() (*FileStore, error) {
	dir := path.Join(config.HomeDir(), "state")
	if err := config.MakeDir(dir); err != nil {
		return nil, errors.Wrap(err, "unable to create state directory")
	}
	return &FileStore{dir: dir}, nil
}

// NewFileStoreInDir returns a FileStore rooted in the given directory.
func NewFileStoreInDir(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) fileName(pipeline string) string {
	return path.Join(s.dir, pipeline+".yaml")
}

func (s *FileStore) LoadState(pipeline, resource string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readFile(pipeline)
	if err != nil {
		return nil, err
	}
	st, ok := all[resource]
	if !ok { // if this resource has no state yet...
		return map[string]interface{}{}, nil
	}
	return st, nil
}

func (s *FileStore) SaveState(pipeline, resource string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.readFile(pipeline)
	if err != nil {
		return err
	}
	all[resource] = data
	b, err := yaml.Marshal(all)
	if err != nil {
		return errors.Wrapf(err, "error marshalling state for pipeline %v", pipeline)
	}
	if err := config.MakeDir(s.dir); err != nil {
		return err
	}
	return ioutil.WriteFile(s.fileName(pipeline), b, 0600)
}

func (s *FileStore) readFile(pipeline string) (map[string]map[string]interface{}, error) {
	all := make(map[string]map[string]interface{})
	b, err := ioutil.ReadFile(s.fileName(pipeline))
	if err != nil {
		if os.IsNotExist(err) { // if there is no durable state yet...
			return all, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, &all); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling state file %v", s.fileName(pipeline))
	}
	return all, nil
}

// MemStore is an in-memory Store for tests and dry runs.
type MemStore struct {
	mu   sync.Mutex
	Data map[string]map[string]interface{} // keyed by pipeline + "/" + resource
}

func NewMemStore() *MemStore {
	return &MemStore{Data: make(map[string]map[string]interface{})}
}

func (s *MemStore) LoadState(pipeline, resource string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.Data[pipeline+"/"+resource]; ok {
		return st, nil
	}
	return map[string]interface{}{}, nil
}

func (s *MemStore) SaveState(pipeline, resource string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data[pipeline+"/"+resource] = data
	return nil
}
