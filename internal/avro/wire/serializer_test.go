package wire

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserSchema = `{"type":"record","name":"User","fields":[
	{"name":"Name","type":"string"},
	{"name":"Age","type":"int"}
]}`

type testUser struct {
	Name string
	Age  int32
}

// fakeRegistry is an in-memory RegistryClient stand-in, tracking call
// counts so tests can assert on build/register frequency without a real
// HTTP or NATS collaborator.
type fakeRegistry struct {
	mu       sync.Mutex
	schemas  map[int32]string
	subjects map[string]int32 // subject -> latest id
	nextID   int32

	getSchemaCalls   int32
	getLatestCalls   int32
	registerCalls    int32
	latestNotFound   map[string]bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		schemas:        map[int32]string{},
		subjects:       map[string]int32{},
		latestNotFound: map[string]bool{},
	}
}

func (f *fakeRegistry) GetSchema(_ context.Context, id int32) (string, error) {
	atomic.AddInt32(&f.getSchemaCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schemas[id]
	if !ok {
		return "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: "schema not found"}
	}
	return s, nil
}

func (f *fakeRegistry) GetLatestSchema(_ context.Context, subject string) (int32, int, string, error) {
	atomic.AddInt32(&f.getLatestCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestNotFound[subject] {
		return 0, 0, "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: "subject not found"}
	}
	id, ok := f.subjects[subject]
	if !ok {
		return 0, 0, "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: "subject not found"}
	}
	return id, 1, f.schemas[id], nil
}

func (f *fakeRegistry) GetSchemaByVersion(_ context.Context, subject string, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.subjects[subject]
	if !ok {
		return "", &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: "subject not found"}
	}
	return f.schemas[id], nil
}

func (f *fakeRegistry) GetSchemaID(_ context.Context, subject string, _ string) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.subjects[subject]
	if !ok {
		return 0, &RegistryError{Code: ErrCodeSubjectOrVersionNotFound, Message: "subject not found"}
	}
	return id, nil
}

func (f *fakeRegistry) RegisterSchema(_ context.Context, subject string, schemaJSON string) (int32, error) {
	atomic.AddInt32(&f.registerCalls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.schemas[id] = schemaJSON
	f.subjects[subject] = id
	return id, nil
}

func TestBuildSerializer_EnvelopesWithGivenID(t *testing.T) {
	fr := newFakeRegistry()
	fr.schemas[5] = testUserSchema

	serialize, err := BuildSerializer(context.Background(), fr, 5, testUser{})
	require.NoError(t, err)

	data, err := serialize(testUser{Name: "Ada", Age: 36})
	require.NoError(t, err)

	id, payload, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, int32(5), id)
	assert.NotEmpty(t, payload)
}

func TestBuildSerializerForSubject_LatestVersion(t *testing.T) {
	fr := newFakeRegistry()
	ctx := context.Background()
	id, err := fr.RegisterSchema(ctx, "users-value", testUserSchema)
	require.NoError(t, err)

	serialize, err := BuildSerializerForSubject(ctx, fr, "users-value", 0, testUser{})
	require.NoError(t, err)

	data, err := serialize(testUser{Name: "Bo", Age: 1})
	require.NoError(t, err)
	gotID, _, err := DecodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
}

func TestBuildSerializerAutoRegister_RegistersOnSubjectNotFound(t *testing.T) {
	fr := newFakeRegistry()
	fr.latestNotFound["users-value"] = true

	serialize, err := BuildSerializerAutoRegister(context.Background(), fr, "users-value", testUser{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, fr.registerCalls)

	data, err := serialize(testUser{Name: "Ada", Age: 36})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestSerializer_AutoRegisterReusesFingerprintAcrossSubjects(t *testing.T) {
	fr := newFakeRegistry()
	fr.latestNotFound["topic-a-value"] = true
	fr.latestNotFound["topic-b-value"] = true

	s := NewSerializer(fr, true)
	ctx := context.Background()

	_, err := s.Serialize(ctx, "topic-a", false, testUser{Name: "Ada", Age: 36})
	require.NoError(t, err)
	assert.EqualValues(t, 1, fr.registerCalls)

	// A second subject auto-registering the same generated schema (same
	// Go type) reuses the id from the fingerprint cache instead of
	// registering again.
	_, err = s.Serialize(ctx, "topic-b", false, testUser{Name: "Bo", Age: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 1, fr.registerCalls)
}

func TestBuildSerializerAutoRegister_PropagatesOtherErrors(t *testing.T) {
	fr := &erroringRegistry{err: fmt.Errorf("boom")}
	_, err := BuildSerializerAutoRegister(context.Background(), fr, "users-value", testUser{})
	assert.Error(t, err)
	assert.Equal(t, "boom", err.Error())
}

type erroringRegistry struct{ err error }

func (e *erroringRegistry) GetSchema(context.Context, int32) (string, error) { return "", e.err }
func (e *erroringRegistry) GetLatestSchema(context.Context, string) (int32, int, string, error) {
	return 0, 0, "", e.err
}
func (e *erroringRegistry) GetSchemaByVersion(context.Context, string, int) (string, error) {
	return "", e.err
}
func (e *erroringRegistry) GetSchemaID(context.Context, string, string) (int32, error) {
	return 0, e.err
}
func (e *erroringRegistry) RegisterSchema(context.Context, string, string) (int32, error) {
	return 0, e.err
}

func TestDeserializer_RejectsMismatchedEnvelopeID(t *testing.T) {
	fr := newFakeRegistry()
	fr.schemas[1] = testUserSchema
	fr.schemas[2] = testUserSchema

	deserialize, err := BuildDeserializer(context.Background(), fr, 1, testUser{})
	require.NoError(t, err)

	wrongID := EncodeEnvelope(2, []byte{0})
	var out testUser
	err = deserialize(wrongID, &out)
	assert.Error(t, err)
}

func TestSerializer_BuildsOncePerSubjectAcrossConcurrentCallers(t *testing.T) {
	fr := newFakeRegistry()
	_, err := fr.RegisterSchema(context.Background(), "users-value", testUserSchema)
	require.NoError(t, err)

	s := NewSerializer(fr, false)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Serialize(context.Background(), "users", false, testUser{Name: "x", Age: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The subject build resolves the latest version through
	// GetLatestSchema, and happens once despite 20 concurrent callers.
	assert.Equal(t, int32(1), atomic.LoadInt32(&fr.getLatestCalls))
}

func TestDeserializer_BuildsOncePerSchemaIDAcrossConcurrentCallers(t *testing.T) {
	fr := newFakeRegistry()
	fr.schemas[9] = testUserSchema

	d := NewDeserializer(fr, func() interface{} { return &testUser{} })

	serialize, err := BuildSerializer(context.Background(), fr, 9, testUser{})
	require.NoError(t, err)
	data, err := serialize(testUser{Name: "Ada", Age: 36})
	require.NoError(t, err)
	// BuildSerializer above fetched schema 9 once; count only the
	// deserializer's own fetches from here on.
	atomic.StoreInt32(&fr.getSchemaCalls, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out testUser
			assert.NoError(t, d.Deserialize(context.Background(), data, &out))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), fr.getSchemaCalls)
}
