package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/sim"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	defaultLookPulse    = 100 * time.Millisecond
)

// Simulation is what the console drives. Actions and Snapshot are safe to
// use from the console goroutine; everything else goes through Do.
type Simulation interface {
	Actions() *input.Map
	Snapshot() sim.Snapshot
	Do(fn func(*sim.Runner)) bool
}

// pulse is a key held for a short time after each press. Terminals only
// report presses, so holding a key shows up as repeated pulses.
type pulse struct {
	until time.Time
}

func (p *pulse) press(now time.Time, d time.Duration) {
	p.until = now.Add(d)
}

func (p *pulse) clear() {
	p.until = time.Time{}
}

func (p *pulse) active(now time.Time) bool {
	return !p.until.IsZero() && now.Before(p.until)
}

type Console struct {
	sim          Simulation
	out          io.Writer
	tickInterval time.Duration
	movePulse    time.Duration
	lookPulse    time.Duration

	mu          sync.Mutex
	forward     pulse
	backward    pulse
	left        pulse
	right       pulse
	look        mgl64.Vec2
	lookPulseAt pulse
	jump        bool
	sentMove    mgl64.Vec2
	sentLook    mgl64.Vec2
	commandMode bool
	commandBuf  []rune
	statusWidth int
}

func NewConsole(s Simulation) *Console {
	return &Console{
		sim:          s,
		out:          os.Stdout,
		tickInterval: defaultTickInterval,
		movePulse:    defaultMovePulse,
		lookPulse:    defaultLookPulse,
	}
}

// Start puts the terminal in raw mode and reads keys until ctx is done.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.sim == nil {
		return fmt.Errorf("console simulation is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprintf(c.out, "[debug] console started, mode %s (W/A/S/D pulse, Space jump, arrows look, X clear, : command)\r\n", c.sim.Snapshot().Mode)
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.release()
			return
		case now := <-ticker.C:
			c.tick(now)
			c.renderStatusLine()
		}
	}
}

// tick sends the move and look values implied by the live pulses, but only
// when they changed since the last send.
func (c *Console) tick(now time.Time) {
	c.mu.Lock()
	move := c.moveVectorLocked(now)
	look := mgl64.Vec2{}
	if c.lookPulseAt.active(now) {
		look = c.look
	} else {
		c.look = mgl64.Vec2{}
		c.lookPulseAt.clear()
	}
	moveChanged := move != c.sentMove
	lookChanged := look != c.sentLook
	c.sentMove, c.sentLook = move, look
	c.mu.Unlock()

	actions := c.sim.Actions()
	if moveChanged {
		sendVector(actions.Move, move)
	}
	if lookChanged {
		sendVector(actions.Look, look)
	}
}

func (c *Console) moveVectorLocked(now time.Time) mgl64.Vec2 {
	var v mgl64.Vec2
	if c.forward.active(now) {
		v[1]++
	}
	if c.backward.active(now) {
		v[1]--
	}
	if c.right.active(now) {
		v[0]++
	}
	if c.left.active(now) {
		v[0]--
	}
	if l := v.Len(); l > 1 {
		v = v.Mul(1 / l)
	}
	return v
}

func sendVector(a *input.Action, v mgl64.Vec2) {
	if v == (mgl64.Vec2{}) {
		a.Cancel()
		return
	}
	a.Perform(input.Vector(v.X(), v.Y()))
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	now := time.Now()
	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulseAxis(now, &c.forward, &c.backward)
	case 's', 'S':
		c.pulseAxis(now, &c.backward, &c.forward)
	case 'a', 'A':
		c.pulseAxis(now, &c.left, &c.right)
	case 'd', 'D':
		c.pulseAxis(now, &c.right, &c.left)
	case ' ':
		c.toggleJump()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.pulseLook(now, mgl64.Vec2{-1, 0})
		case 'C': // right
			c.pulseLook(now, mgl64.Vec2{1, 0})
		case 'A': // up
			c.pulseLook(now, mgl64.Vec2{0, 1})
		case 'B': // down
			c.pulseLook(now, mgl64.Vec2{0, -1})
		}
	}
	c.tick(now)
	c.renderStatusLine()
}

// pulseAxis presses p and drops its opposite so W then S reverses at once.
func (c *Console) pulseAxis(now time.Time, p, opposite *pulse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.press(now, c.movePulse)
	opposite.clear()
}

func (c *Console) pulseLook(now time.Time, dir mgl64.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.look = dir
	c.lookPulseAt.press(now, c.lookPulse)
}

func (c *Console) toggleJump() {
	c.mu.Lock()
	c.jump = !c.jump
	held := c.jump
	c.mu.Unlock()

	jump := c.sim.Actions().Jump
	if held {
		jump.Perform(input.Button(true))
	} else {
		jump.Cancel()
	}
	slog.Debug("debug jump toggled", "held", held)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.forward.clear()
	c.backward.clear()
	c.left.clear()
	c.right.clear()
	c.lookPulseAt.clear()
	c.look = mgl64.Vec2{}
	wasJumping := c.jump
	c.jump = false
	c.mu.Unlock()

	if wasJumping {
		c.sim.Actions().Jump.Cancel()
	}
}

// release cancels everything the console may still be holding.
func (c *Console) release() {
	c.clearInput()
	c.mu.Lock()
	c.sentMove, c.sentLook = mgl64.Vec2{}, mgl64.Vec2{}
	c.mu.Unlock()
	actions := c.sim.Actions()
	actions.Move.Cancel()
	actions.Look.Cancel()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		snap := c.sim.Snapshot()
		fmt.Fprintf(c.out, "[debug] %s\r\n", snap.String())
		fmt.Fprintf(c.out, "[debug] input move=(%.2f,%.2f) look=(%.2f,%.2f) jump=%t speed=%.2f\r\n",
			snap.Input.Move.X(), snap.Input.Move.Y(),
			snap.Input.Look.X(), snap.Input.Look.Y(),
			snap.Input.Jump, snap.Speed(),
		)
	case "tp":
		v, ok := c.parseVec3(parts, "tp")
		if !ok {
			return
		}
		c.do(func(r *sim.Runner) { r.Teleport(v) })
		fmt.Fprintf(c.out, "[debug] teleport to (%.3f, %.3f, %.3f)\r\n", v.X(), v.Y(), v.Z())
	case "cam":
		if len(parts) < 2 || len(parts) > 3 {
			fmt.Fprint(c.out, "[debug] usage: :cam <yaw> [pitch]\r\n")
			return
		}
		yaw, err1 := strconv.ParseFloat(parts[1], 64)
		pitch, err2 := 0.0, error(nil)
		if len(parts) == 3 {
			pitch, err2 = strconv.ParseFloat(parts[2], 64)
		}
		if err1 != nil || err2 != nil {
			fmt.Fprint(c.out, "[debug] invalid cam args\r\n")
			return
		}
		c.do(func(r *sim.Runner) { r.TurnCamera(yaw, pitch) })
	case "block":
		if len(parts) != 4 {
			fmt.Fprint(c.out, "[debug] usage: :block <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.Atoi(parts[1])
		y, err2 := strconv.Atoi(parts[2])
		z, err3 := strconv.Atoi(parts[3])
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprint(c.out, "[debug] invalid block args\r\n")
			return
		}
		out := c.out
		c.do(func(r *sim.Runner) {
			fmt.Fprintf(out, "[debug] block (%d,%d,%d): solid=%t\r\n", x, y, z, r.Scene().Blocks.IsSolid(x, y, z))
		})
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) parseVec3(parts []string, name string) (mgl64.Vec3, bool) {
	if len(parts) != 4 {
		fmt.Fprintf(c.out, "[debug] usage: :%s <x> <y> <z>\r\n", name)
		return mgl64.Vec3{}, false
	}
	x, err1 := strconv.ParseFloat(parts[1], 64)
	y, err2 := strconv.ParseFloat(parts[2], 64)
	z, err3 := strconv.ParseFloat(parts[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintf(c.out, "[debug] invalid %s args\r\n", name)
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{x, y, z}, true
}

func (c *Console) do(fn func(*sim.Runner)) {
	if !c.sim.Do(fn) {
		fmt.Fprint(c.out, "[debug] simulation busy, command dropped\r\n")
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: toggle jump\r\n")
	fmt.Fprint(c.out, "  Arrows: pulse look (~100ms)\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :cam <yaw> [pitch]\r\n")
	fmt.Fprint(c.out, "  :block <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	move, look, jump := c.sentMove, c.sentLook, c.jump
	width := c.statusWidth
	c.mu.Unlock()

	snap := c.sim.Snapshot()
	line := fmt.Sprintf(
		"[MOV:%+.1f,%+.1f LOOK:%+.0f,%+.0f JMP:%s | YAW:%.1f CAM:%.1f/%.1f | X:%.2f Y:%.2f Z:%.2f spd:%.2f ground:%t]",
		move.X(), move.Y(),
		look.X(), look.Y(),
		boolLabel(jump),
		snap.Yaw,
		snap.CameraYaw, snap.CameraPitch,
		snap.Position.X(), snap.Position.Y(), snap.Position.Z(),
		snap.Speed(),
		snap.Grounded,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
