package inspector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func newTestSkeleton(t *testing.T) *model.Skeleton {
	t.Helper()
	skel, err := model.NewSkeleton([]model.Bone{
		{Name: "hips", ParentIndex: -1, LocalBindTransform: model.IdentityTransform()},
		{Name: "spine", ParentIndex: 0, LocalBindTransform: model.IdentityTransform()},
	})
	if err != nil {
		t.Fatalf("NewSkeleton() error = %v", err)
	}
	return skel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})

	var hello helloMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("failed to read hello: %v", err)
	}
	if hello.Type != TypeHello || hello.Client == uuid.Nil {
		t.Fatalf("hello = %+v", hello)
	}
	return conn
}

func TestHubPublishesFrames(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { h.Close() })

	a, b := dial(t, srv), dial(t, srv)
	if h.ClientCount() != 2 {
		t.Fatalf("ClientCount() = %d, want 2", h.ClientCount())
	}

	skel := newTestSkeleton(t)
	pose := skel.BindPose()
	pose[1].Translation = mgl32.Vec3{0, 2, 0}
	id := uuid.New()
	if err := h.Publish(NewFrame(id, 1.5, skel, pose, model.SpaceLocal)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read frame: %v", err)
		}
		var f Frame
		if err := json.Unmarshal(payload, &f); err != nil {
			t.Fatalf("failed to decode frame: %v", err)
		}
		if f.Type != TypePose || f.Instance != id || f.Time != 1.5 || f.Space != "local" || len(f.Bones) != 2 {
			t.Fatalf("frame = %+v", f)
		}
		if f.Bones[1].Name != "spine" || f.Bones[1].Parent != 0 || f.Bones[1].Translation != [3]float32{0, 2, 0} {
			t.Errorf("spine = %+v", f.Bones[1])
		}
		if f.Bones[0].Rotation != [4]float32{0, 0, 0, 1} {
			t.Errorf("hips rotation = %v, want identity [x y z w]", f.Bones[0].Rotation)
		}
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d after disconnect, want 0", h.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after Close() error = %v, want normal closure", err)
	}
	if err := h.Publish(Frame{}); err != ErrHubClosed {
		t.Errorf("Publish() after Close() error = %v, want ErrHubClosed", err)
	}

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status after Close() = %d, want 503", resp.StatusCode)
	}
}

func TestNewFrameTruncatesToShorterInput(t *testing.T) {
	skel := newTestSkeleton(t)
	f := NewFrame(uuid.New(), 0, skel, model.NewPose(1), model.SpaceLocal)
	if len(f.Bones) != 1 || f.Bones[0].Name != "hips" {
		t.Errorf("NewFrame() bones = %+v, want only hips", f.Bones)
	}
	if f := NewFrame(uuid.New(), 0, nil, model.NewPose(3), model.SpaceComponent); len(f.Bones) != 0 {
		t.Errorf("NewFrame() with nil skeleton has %d bones", len(f.Bones))
	}
}

func TestNewFrameComponentSpace(t *testing.T) {
	skel := newTestSkeleton(t)
	pose := skel.BindPose()
	pose[0].Translation = mgl32.Vec3{1, 0, 0}
	pose[0].Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	pose[1].Translation = mgl32.Vec3{0, 2, 0}
	local := append(model.Pose(nil), pose...)

	f := NewFrame(uuid.New(), 0, skel, pose, model.SpaceComponent)
	if f.Space != "component" {
		t.Errorf("Space = %q, want component", f.Space)
	}
	// The spine's (0, 2, 0) offset is rotated 90 degrees about Z by the hips, then moved by the hips' translation.
	want := mgl32.Vec3{-1, 0, 0}
	got := f.Bones[1].Translation
	for i := range got {
		if !common.WithinEpsilon(got[i], want[i], 1e-5) {
			t.Errorf("spine component translation = %v, want %v", got, want)
			break
		}
	}
	if !pose.ApproxEqual(local, 0) {
		t.Error("NewFrame() modified the input pose")
	}
}
