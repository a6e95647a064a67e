package main

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/course-metadata/internal/course"
)

func TestShowEmbeddedDefault(t *testing.T) {
	var out bytes.Buffer
	if err := show(&out, "", "en-US", false); err != nil {
		t.Fatalf("show returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"id:          http://iYMkSykpcVs3Rxr__q_fL4WIqpfab5jm_rise\n",
		"name:        Code Apps with Java\n",
		"description: &lt;p&gt;&lt;strong&gt;Course Description:",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestShowDecoded(t *testing.T) {
	var out bytes.Buffer
	if err := show(&out, "", "en-US", true); err != nil {
		t.Fatalf("show returned error: %v", err)
	}
	if !strings.Contains(out.String(), "description: <p><strong>Course Description:</strong></p>") {
		t.Fatalf("expected decoded description, got:\n%s", out.String())
	}
}

func TestShowUnknownLocale(t *testing.T) {
	var out bytes.Buffer
	err := show(&out, "", "fr-FR", false)
	if !errors.Is(err, course.ErrLocaleNotFound) {
		t.Fatalf("expected ErrLocaleNotFound, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output on failure, got %q", out.String())
	}
}

func TestShowMetadataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.hcl")
	doc := "course_id = \"X\"\ncourse_name = { \"en-US\" = \"Code Apps with Java\" }\ncourse_description = { \"en-US\" = \"d\" }\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	var out bytes.Buffer
	if err := show(&out, path, "en-US", false); err != nil {
		t.Fatalf("show returned error: %v", err)
	}
	want := "id:          X\nlocale:      en-US\nname:        Code Apps with Java\ndescription: d\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func sendSIGTERMOnNotify(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		signalNotify = signal.Notify
	})
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}
}

func TestShutdownSignals(t *testing.T) {
	sendSIGTERMOnNotify(t)

	server := &http.Server{}
	called := make(chan struct{}, 1)
	server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	shutdown(server, time.Millisecond, zaptest.NewLogger(t))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}
}

func TestShutdownClosesConnectionsAfterGracePeriod(t *testing.T) {
	sendSIGTERMOnNotify(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	server := &http.Server{
		Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			close(entered)
			<-release
		}),
		ReadHeaderTimeout: time.Second,
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		_ = server.Serve(ln)
	}()

	clientErr := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err == nil {
			resp.Body.Close()
		}
		clientErr <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("request never reached the handler")
	}

	core, logs := observer.New(zap.InfoLevel)
	shutdown(server, time.Millisecond, zap.New(core))

	if logs.FilterMessage("graceful shutdown failed").Len() != 1 {
		t.Fatalf("expected graceful shutdown to time out, got logs %v", logs.All())
	}

	select {
	case err := <-clientErr:
		if err == nil {
			t.Fatalf("expected in-flight request to be cut off by forced close")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected forced close to drop the open connection")
	}
}
