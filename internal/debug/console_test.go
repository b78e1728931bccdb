package debug

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Versifine/locomotor/internal/config"
	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/sim"
	"github.com/go-gl/mathgl/mgl64"
)

type harness struct {
	runner  *sim.Runner
	console *Console
	state   *input.Buffer
	out     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Sim.Mode = config.ModeOrbit
	r, err := sim.New(cfg, sim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = r.Stop() })

	h := &harness{runner: r, state: input.NewBuffer(), out: &bytes.Buffer{}}
	var b input.Binding
	b.On(r.Actions().Move, h.state.MoveHandler())
	b.On(r.Actions().Look, h.state.LookHandler())
	b.On(r.Actions().Jump, h.state.JumpHandler())
	t.Cleanup(func() { b.Release() })

	h.console = NewConsole(r)
	h.console.out = h.out
	return h
}

// keys feeds a key sequence the way Start does.
func (h *harness) keys(s string) {
	reader := bufio.NewReader(strings.NewReader(s))
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		h.console.handleKey(reader, b)
	}
}

// TestMovementPulse 测试 WASD 脉冲移动
func TestMovementPulse(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want mgl64.Vec2
	}{
		{"前进", "w", mgl64.Vec2{0, 1}},
		{"后退", "s", mgl64.Vec2{0, -1}},
		{"左移", "a", mgl64.Vec2{-1, 0}},
		{"后退覆盖前进", "ws", mgl64.Vec2{0, -1}},
		{"大写同样有效", "D", mgl64.Vec2{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.keys(tt.keys)
			if got := h.state.Load().Move; got != tt.want {
				t.Errorf("move = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

// TestDiagonalIsNormalized 测试斜向移动归一化
func TestDiagonalIsNormalized(t *testing.T) {
	h := newHarness(t)
	h.keys("wd")
	got := h.state.Load().Move
	if l := got.Len(); l < 0.999 || l > 1.001 {
		t.Errorf("斜向长度 = %v, 期望 1", l)
	}
	if got.X() <= 0 || got.Y() <= 0 {
		t.Errorf("斜向方向 = %v, 期望右前方", got)
	}
}

// TestPulseExpires 测试脉冲过期后取消移动
func TestPulseExpires(t *testing.T) {
	h := newHarness(t)
	h.keys("w")
	h.console.tick(time.Now().Add(time.Second))
	if got := h.state.Load().Move; got != (mgl64.Vec2{}) {
		t.Errorf("过期后 move = %v, 期望零向量", got)
	}
}

// TestJumpToggle 测试空格切换跳跃
func TestJumpToggle(t *testing.T) {
	h := newHarness(t)
	h.keys(" ")
	if !h.state.Load().Jump {
		t.Fatal("第一次空格后应按住跳跃")
	}
	h.keys(" ")
	if h.state.Load().Jump {
		t.Error("第二次空格后应松开跳跃")
	}
}

// TestArrowLook 测试方向键视角脉冲
func TestArrowLook(t *testing.T) {
	tests := []struct {
		seq  string
		want mgl64.Vec2
	}{
		{"\x1b[C", mgl64.Vec2{1, 0}},
		{"\x1b[D", mgl64.Vec2{-1, 0}},
		{"\x1b[A", mgl64.Vec2{0, 1}},
		{"\x1b[B", mgl64.Vec2{0, -1}},
	}
	for _, tt := range tests {
		h := newHarness(t)
		h.keys(tt.seq)
		if got := h.state.Load().Look; got != tt.want {
			t.Errorf("%q look = %v, 期望 %v", tt.seq, got, tt.want)
		}
		h.console.tick(time.Now().Add(time.Second))
		if got := h.state.Load().Look; got != (mgl64.Vec2{}) {
			t.Errorf("%q 过期后 look = %v", tt.seq, got)
		}
	}
}

// TestClearInput 测试 X 清除所有输入
func TestClearInput(t *testing.T) {
	h := newHarness(t)
	h.keys("w ")
	h.keys("x")
	s := h.state.Load()
	if s.Move != (mgl64.Vec2{}) || s.Jump {
		t.Errorf("清除后 state = %+v", s)
	}
}

// TestTeleportCommand 测试 :tp 命令在帧边界生效
func TestTeleportCommand(t *testing.T) {
	h := newHarness(t)
	h.keys(":tp 1 2 3\r")
	if err := h.runner.Frame(0); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if got := h.runner.Snapshot().Position; got != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("position = %v, 期望 (1,2,3)", got)
	}
}

// TestCamCommand 测试 :cam 命令
func TestCamCommand(t *testing.T) {
	h := newHarness(t)
	h.keys(":cam 45 -5\r")
	if err := h.runner.Frame(0); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if got := h.runner.Camera().Yaw(); got != 45 {
		t.Errorf("camera yaw = %v, 期望 45", got)
	}
	if got := h.runner.Camera().Pitch(); got != 10 {
		t.Errorf("camera pitch = %v, 期望 10", got)
	}
}

// TestCommandOutput 测试命令输出与错误提示
func TestCommandOutput(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want string
	}{
		{"未知命令", ":fly\r", "unknown command: fly"},
		{"tp参数不足", ":tp 1 2\r", "usage: :tp"},
		{"tp参数非法", ":tp a b c\r", "invalid tp args"},
		{"状态", ":state\r", "orbit"},
		{"帮助", ":help\r", ":tp <x> <y> <z>"},
		{"取消命令", ":tp\x1b", "command cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.keys(tt.keys)
			if !strings.Contains(h.out.String(), tt.want) {
				t.Errorf("输出应包含 %q, 实际: %q", tt.want, h.out.String())
			}
		})
	}
}

// TestBlockCommand 测试 :block 命令查询方块
func TestBlockCommand(t *testing.T) {
	h := newHarness(t)
	h.keys(":block 0 -1 0\r")
	if err := h.runner.Frame(0); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if !strings.Contains(h.out.String(), "block (0,-1,0): solid=true") {
		t.Errorf("输出 = %q", h.out.String())
	}
}

// TestCommandModeSwallowsKeys 测试命令模式下按键不触发移动
func TestCommandModeSwallowsKeys(t *testing.T) {
	h := newHarness(t)
	h.keys(":ww")
	if got := h.state.Load().Move; got != (mgl64.Vec2{}) {
		t.Errorf("命令模式下 move = %v, 期望零向量", got)
	}
	h.keys("\x7f\x7f\x1b")
	h.keys("w")
	if got := h.state.Load().Move; got != (mgl64.Vec2{0, 1}) {
		t.Errorf("退出命令模式后 move = %v", got)
	}
}
