package agentfront

import (
	"bytes"
	"encoding/gob"
	"strings"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// probeLogMax bounds the persisted probe history.
const probeLogMax = 50

// stateStore persists installed-endpoint records, the probe log, and the
// beacon client id. Writes are last-writer-wins; there is no cross-process
// coordination beyond leveldb's own file lock.
type stateStore struct {
	db *leveldb.DB
}

func openStateStore(path string) (*stateStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &stateStore{db: db}, nil
}

func (st *stateStore) close() {
	_ = st.db.Close()
}

func (st *stateStore) GetEndpoint(path string) (InstalledEndpoint, bool) {
	b, err := st.db.Get([]byte("ep:"+path), nil)
	if err != nil {
		return InstalledEndpoint{}, false
	}
	var rec InstalledEndpoint
	if err := decodeGob(b, &rec); err != nil {
		return InstalledEndpoint{}, false
	}
	return rec, true
}

func (st *stateStore) PutEndpoint(rec InstalledEndpoint) error {
	b, err := encodeGob(rec)
	if err != nil {
		return err
	}
	return st.db.Put([]byte("ep:"+rec.Path), b, nil)
}

func (st *stateStore) DeleteEndpoint(path string) error {
	return st.db.Delete([]byte("ep:"+path), nil)
}

func (st *stateStore) Endpoints() []InstalledEndpoint {
	it := st.db.NewIterator(util.BytesPrefix([]byte("ep:")), nil)
	defer it.Release()

	var out []InstalledEndpoint
	for it.Next() {
		var rec InstalledEndpoint
		if err := decodeGob(it.Value(), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// AppendProbeLog adds one probe run, keeping only the most recent probeLogMax.
func (st *stateStore) AppendProbeLog(res ProbeResult) error {
	logs := st.ProbeLog()
	logs = append(logs, res)
	if len(logs) > probeLogMax {
		logs = logs[len(logs)-probeLogMax:]
	}
	b, err := encodeGob(logs)
	if err != nil {
		return err
	}
	return st.db.Put([]byte("probelog"), b, nil)
}

func (st *stateStore) ProbeLog() []ProbeResult {
	b, err := st.db.Get([]byte("probelog"), nil)
	if err != nil {
		return nil
	}
	var logs []ProbeResult
	if err := decodeGob(b, &logs); err != nil {
		return nil
	}
	return logs
}

// ClientID returns the stable beacon client id, minting one on first use.
func (st *stateStore) ClientID() string {
	if b, err := st.db.Get([]byte("client_id"), nil); err == nil {
		id := strings.TrimSpace(string(b))
		if id != "" {
			return id
		}
	}
	id := uuid.NewString()
	_ = st.db.Put([]byte("client_id"), []byte(id), nil)
	return id
}

// ---- encoding ----

func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(b []byte, v any) error {
	dec := gob.NewDecoder(bytes.NewReader(b))
	return dec.Decode(v)
}
