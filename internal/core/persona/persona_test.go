package persona

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/symposium/internal/core/forum"
)

func TestProfileTrait(t *testing.T) {
	p := Profile{Traits: map[string]float64{"curiosity": 0.9}}

	assert.Equal(t, 0.9, p.Trait("curiosity"))
	assert.Equal(t, 0.5, p.Trait("extroversion"), "absent traits are neutral")
}

func TestProfileDominantTrait(t *testing.T) {
	p := Profile{Traits: map[string]float64{
		"analytical": 0.9,
		"systematic": 0.9,
		"practical":  0.8,
	}}

	// Ties break alphabetically.
	assert.Equal(t, "analytical", p.DominantTrait())
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"valid", Profile{ID: "socrates", Name: "Socrates"}, false},
		{"missing id", Profile{Name: "Socrates"}, true},
		{"uppercase id", Profile{ID: "Socrates", Name: "Socrates"}, true},
		{"missing name", Profile{ID: "socrates"}, true},
		{"trait out of range", Profile{ID: "x", Name: "X", Traits: map[string]float64{"curiosity": 1.2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultLibrary(t *testing.T) {
	l := DefaultLibrary()

	require.Equal(t, 6, l.Len())
	for _, p := range l.List() {
		assert.NoError(t, p.Validate(), "builtin %s must validate", p.ID)
	}

	sock, ok := l.Get("socrates")
	require.True(t, ok)
	assert.Equal(t, 0.8, sock.Trait("extroversion"))
}

func TestLibraryResolve(t *testing.T) {
	l := DefaultLibrary()

	byID, ok := l.Resolve("kant")
	require.True(t, ok)
	assert.Equal(t, "Immanuel Kant", byID.Name)

	byName, ok := l.Resolve("immanuel kant")
	require.True(t, ok)
	assert.Equal(t, "kant", byName.ID)

	_, ok = l.Resolve("heraclitus")
	assert.False(t, ok)
}

func TestLibraryAddOverridesBuiltin(t *testing.T) {
	l := DefaultLibrary()
	l.Add(Profile{ID: "socrates", Name: "Socrates (custom)"})

	p, ok := l.Get("socrates")
	require.True(t, ok)
	assert.Equal(t, "Socrates (custom)", p.Name)
	assert.Equal(t, 6, l.Len(), "override must not grow the library")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	good := `id: hypatia
name: Hypatia
era: Late Antiquity (c. 350-415 CE)
expertise: [mathematics, astronomy, neoplatonism]
traits:
  curiosity: 0.9
  systematic: 0.8
`
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "hypatia.yml"), []byte(good), 0o644))

	l := NewLibrary()
	n, err := l.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, ok := l.Get("hypatia")
	require.True(t, ok)
	assert.Equal(t, "Hypatia", p.Name)
	assert.Equal(t, 0.9, p.Trait("curiosity"))
}

func TestLoadDirMissingIsNotAnError(t *testing.T) {
	l := NewLibrary()
	n, err := l.LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadDirRejectsInvalidPersona(t *testing.T) {
	dir := t.TempDir()
	bad := "id: Bad Id\nname: Broken\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte(bad), 0o644))

	_, err := NewLibrary().LoadDir(dir)
	require.Error(t, err)
}

func TestMemoryObserve(t *testing.T) {
	sock, _ := DefaultLibrary().Get("socrates")
	m := NewMemory(sock)

	assert.Equal(t, 0.8, m.Interest("ethics"), "expertise areas seed interest at 0.8")
	assert.Equal(t, 0.5, m.Interest("astronomy"), "unknown topics are neutral")

	now := time.Now()
	msgs := []forum.Message{
		{ID: "m1", SenderID: "human"},
		{ID: "m2", SenderID: "socrates"},
	}
	m.Observe(msgs, now)

	assert.Equal(t, []string{"m1", "m2"}, m.Seen)
	assert.Equal(t, 0.5, m.Relationships["human"], "new senders start neutral")
	_, hasSelf := m.Relationships["socrates"]
	assert.False(t, hasSelf, "no relationship with self")
	assert.Equal(t, now, m.LastActive)

	// Observing the same messages again must not duplicate them.
	later := now.Add(time.Minute)
	m.Relationships["human"] = 0.7
	m.Observe(msgs, later)

	assert.Equal(t, []string{"m1", "m2"}, m.Seen)
	assert.Equal(t, 0.7, m.Relationships["human"], "existing relationships are preserved")
	assert.Equal(t, later, m.LastActive)
}
