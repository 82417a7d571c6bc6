package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/turf/internal/targets"
)

func withTemplate(template string) *Settings {
	s := Default()
	s.ClassNames.Template = template
	return &s
}

func TestChoose(t *testing.T) {
	dev := withTemplate("abc")
	prod := withTemplate("def")

	tests := []struct {
		name  string
		dev   *Settings
		prod  *Settings
		isDev bool
		want  string
	}{
		{name: "development build uses development profile", dev: dev, prod: prod, isDev: true, want: "abc"},
		{name: "development build falls back to production profile", dev: nil, prod: prod, isDev: true, want: "def"},
		{name: "development build without profiles uses defaults", dev: nil, prod: nil, isDev: true, want: DefaultClassNameTemplate},
		{name: "production build uses production profile", dev: dev, prod: prod, isDev: false, want: "def"},
		{name: "production build never uses development profile", dev: dev, prod: nil, isDev: false, want: DefaultClassNameTemplate},
		{name: "production build without profiles uses defaults", dev: nil, prod: nil, isDev: false, want: DefaultClassNameTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Choose(tt.dev, tt.prod, tt.isDev)
			assert.Equal(t, tt.want, got.ClassNames.Template)
		})
	}
}

func TestChooseReturnsCopy(t *testing.T) {
	prod := Default()
	prod.LoadPaths = []string{"styles"}

	got := Choose(nil, &prod, false)
	got.LoadPaths[0] = "mutated"

	assert.Equal(t, "styles", prod.LoadPaths[0])
}

func TestDefault(t *testing.T) {
	s := Default()

	assert.False(t, s.Debug)
	assert.True(t, s.Minify)
	assert.Empty(t, s.LoadPaths)
	assert.Nil(t, s.BrowserTargets)
	assert.Nil(t, s.FileOutput)
	assert.Equal(t, "class-<id>", s.ClassNames.Template)
	assert.Empty(t, s.ClassNames.Excludes)
}

func TestCloneIsDeep(t *testing.T) {
	s := Default()
	s.LoadPaths = []string{"a"}
	s.ClassNames.Excludes = []string{"keep"}
	s.BrowserTargets = &targets.Browsers{Chrome: targets.Major(90)}
	s.FileOutput = &FileOutput{GlobalCSSFilePath: "out.css"}

	c := s.Clone()
	require.True(t, s.Equal(c))

	c.LoadPaths[0] = "b"
	c.ClassNames.Excludes[0] = "other"
	c.BrowserTargets.Chrome = targets.Major(100)
	c.FileOutput.GlobalCSSFilePath = "other.css"

	assert.Equal(t, "a", s.LoadPaths[0])
	assert.Equal(t, "keep", s.ClassNames.Excludes[0])
	assert.Equal(t, targets.Major(90), s.BrowserTargets.Chrome)
	assert.Equal(t, "out.css", s.FileOutput.GlobalCSSFilePath)
	assert.False(t, s.Equal(c))
}

func TestPopulate(t *testing.T) {
	t.Run("first writer wins", func(t *testing.T) {
		var sl slot
		e := populate(&sl, Production, withTemplate("a"))
		assert.Equal(t, "a", e.settings.ClassNames.Template)
	})

	t.Run("same value twice is fine", func(t *testing.T) {
		var sl slot
		populate(&sl, Production, withTemplate("a"))
		assert.NotPanics(t, func() {
			populate(&sl, Production, withTemplate("a"))
		})
	})

	t.Run("absent profile twice is fine", func(t *testing.T) {
		var sl slot
		populate(&sl, Development, nil)
		assert.NotPanics(t, func() {
			populate(&sl, Development, nil)
		})
	})

	t.Run("different value panics", func(t *testing.T) {
		var sl slot
		populate(&sl, Development, withTemplate("a"))
		assert.PanicsWithValue(t,
			"turf: development settings have already been set to a different value",
			func() { populate(&sl, Development, withTemplate("b")) })
	})

	t.Run("failed read is kept", func(t *testing.T) {
		var sl slot
		cause := errors.New("boom")
		fail(&sl, cause)

		_, err := populate(&sl, Production, withTemplate("a")).result()
		assert.Same(t, cause, err)

		_, err = fail(&sl, errors.New("other")).result()
		assert.Same(t, cause, err)
	})

	t.Run("absent then present panics", func(t *testing.T) {
		var sl slot
		populate(&sl, Production, nil)
		assert.Panics(t, func() { populate(&sl, Production, withTemplate("a")) })
	})
}

func TestModeFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{value: "", fallback: true, want: true},
		{value: "", fallback: false, want: false},
		{value: "dev", fallback: false, want: true},
		{value: "Development", fallback: false, want: true},
		{value: "release", fallback: true, want: false},
		{value: " production ", fallback: true, want: false},
		{value: "unknown", fallback: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, modeFromEnv(tt.value, tt.fallback))
		})
	}
}
