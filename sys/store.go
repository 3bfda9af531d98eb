package sys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// Store persists per-guild JSON documents under root/<guildID>/<doc>.json.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated document behind. A missing or corrupt document reads
// as empty, the bot must keep working after data loss.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(root string) *Store {
	return &Store{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) path(guildID snowflake.ID, doc string) string {
	return filepath.Join(s.root, guildID.String(), doc+".json")
}

// lockFor returns the mutex serializing access to one (guild, doc) pair.
func (s *Store) lockFor(guildID snowflake.ID, doc string) *sync.Mutex {
	key := guildID.String() + "/" + doc
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// Load reads a document into v. If the file is missing or unparseable,
// v is left untouched and Load returns nil. Callers pass a zero value
// and get the empty document in both cases.
func (s *Store) Load(guildID snowflake.ID, doc string, v any) error {
	lock := s.lockFor(guildID, doc)
	lock.Lock()
	defer lock.Unlock()
	return s.load(guildID, doc, v)
}

func (s *Store) load(guildID snowflake.ID, doc string, v any) error {
	data, err := os.ReadFile(s.path(guildID, doc))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		LogStore(MsgStoreCorruptDocument, s.path(guildID, doc), err)
		return nil
	}
	return nil
}

// Save atomically writes v as the new document contents.
func (s *Store) Save(guildID snowflake.ID, doc string, v any) error {
	lock := s.lockFor(guildID, doc)
	lock.Lock()
	defer lock.Unlock()
	return s.save(guildID, doc, v)
}

func (s *Store) save(guildID snowflake.ID, doc string, v any) error {
	target := s.path(guildID, doc)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf(MsgStoreSaveFail, doc, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf(MsgStoreSaveFail, doc, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), doc+"-*.tmp")
	if err != nil {
		return fmt.Errorf(MsgStoreSaveFail, doc, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(MsgStoreSaveFail, doc, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf(MsgStoreSaveFail, doc, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf(MsgStoreSaveFail, doc, err)
	}
	return nil
}

// Update runs fn as an atomic read-modify-write. v is loaded under the
// document lock, fn mutates it, and the result is saved before the lock
// is released. Concurrent updates to the same document serialize, so no
// writer can clobber another's changes.
func (s *Store) Update(guildID snowflake.ID, doc string, v any, fn func() error) error {
	lock := s.lockFor(guildID, doc)
	lock.Lock()
	defer lock.Unlock()

	if err := s.load(guildID, doc, v); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return s.save(guildID, doc, v)
}

// Delete removes a document. Deleting a document that does not exist
// is not an error.
func (s *Store) Delete(guildID snowflake.ID, doc string) error {
	lock := s.lockFor(guildID, doc)
	lock.Lock()
	defer lock.Unlock()

	err := os.Remove(s.path(guildID, doc))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GuildIDs lists every guild that has at least one stored document.
func (s *Store) GuildIDs() ([]snowflake.ID, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []snowflake.ID
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := snowflake.Parse(entry.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
