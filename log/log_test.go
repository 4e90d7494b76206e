package log

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"
)

type attrError struct{}

func (attrError) Error() string { return "type mismatch" }

func (attrError) LogValue() slog.Value {
	return slog.GroupValue(slog.String("msg", "type mismatch"), slog.String("want", "vec2"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" info ", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"debug+2", Level(slog.LevelDebug + 2)},
		{"loud", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	want := []string{"trace", "debug", "info", "warn", "error"}
	if got := slices.Collect(Levels()); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	for _, name := range want {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("expected %q, got %q", name, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("JSON"); got != FormatJSON {
		t.Errorf("expected %v, got %v", FormatJSON, got)
	}

	if got := ParseFormat("yaml"); got != DefaultFormat {
		t.Errorf("expected %v, got %v", DefaultFormat, got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("expected [text json], got %v", got)
	}
}

func TestTimeLayout(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"none", ""},
		{"RFC3339Nano", time.RFC3339Nano},
		{" kitchen ", time.Kitchen},
		{"ms", time.StampMilli},
		{"15:04", "15:04"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := timeLayout(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLogger_Output(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		log  func(Logger)
		want string
	}{
		{
			name: "text",
			log:  func(l Logger) { l.Info("compiled", slog.Int("uniforms", 3)) },
			want: "level=INFO msg=compiled uniforms=3\n",
		},
		{
			name: "json",
			opts: []Option{WithFormat(FormatJSON)},
			log:  func(l Logger) { l.Warn("duplicate version", slog.String("file", "a.fsh")) },
			want: `{"level":"WARN","msg":"duplicate version","file":"a.fsh"}` + "\n",
		},
		{
			name: "trace",
			opts: []Option{WithLevel(LevelTrace)},
			log:  func(l Logger) { l.Trace("cache hit") },
			want: "level=TRACE msg=\"cache hit\"\n",
		},
		{
			name: "filtered",
			opts: []Option{WithLevel(LevelWarn)},
			log:  func(l Logger) { l.Info("quiet"); l.Debug("quieter") },
			want: "",
		},
		{
			name: "with",
			log: func(l Logger) {
				l.With(slog.String("command", "run")).ErrorContext(t.Context(), "failed")
			},
			want: "level=ERROR msg=failed command=run\n",
		},
		{
			name: "pretty",
			opts: []Option{WithPretty(true), WithLevel(LevelDebug)},
			log: func(l Logger) {
				l.With(slog.String("command", "eval")).Debug("rejected",
					slog.Any("error", attrError{}),
					slog.Bool("fatal", false),
					slog.String("expr", "a + b"),
				)
			},
			want: `DEBUG rejected command=eval error.msg="type mismatch" error.want=vec2 fatal=false expr="a + b"` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, append([]Option{WithTimeLayout("none")}, tt.opts...)...))

			if got := buf.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(true)).Info("here")

	if got := buf.String(); !strings.Contains(got, "log_test.go:") {
		t.Errorf("expected caller log_test.go, got %q", got)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none"))
	w := l.Wrap(WithLevel(LevelError), WithFormat(FormatJSON))

	if w.Level() != LevelError || w.Format() != FormatJSON {
		t.Fatalf("expected error/json, got %v/%v", w.Level(), w.Format())
	}

	if l.Level() != DefaultLevel {
		t.Errorf("expected original level %v, got %v", DefaultLevel, l.Level())
	}

	w.Warn("dropped")
	l.Warn("kept")

	if got, want := buf.String(), "level=WARN msg=kept\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLogger_Zero(t *testing.T) {
	var l Logger

	l.Error("discarded", slog.Any("error", errors.New("x")))

	if l.With(slog.Int("n", 1)).Logger != nil {
		t.Error("expected zero logger to stay zero")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("expected defaults, got %v/%v", l.Level(), l.Format())
	}
}

func TestConfig(t *testing.T) {
	saved := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = saved
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithTimeLayout(""), WithLevel(LevelDebug))
	With(slog.String("pkg", "preproc")).Debug("tagged", slog.Int("lines", 12))
	Trace("invisible")

	if got, want := buf.String(), "level=DEBUG msg=tagged pkg=preproc lines=12\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
