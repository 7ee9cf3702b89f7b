package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestClientMessageRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		msg  ClientMessage
	}{
		{"join", ClientMessage{Join: &Join{Name: "robobo"}}},
		{"join empty name", ClientMessage{Join: &Join{Name: ""}}},
		{"place bomb", ClientMessage{PlaceBomb: &PlaceBomb{}}},
		{"place block", ClientMessage{PlaceBlock: &PlaceBlock{}}},
		{"move up", ClientMessage{Move: &Move{Direction: Up}}},
		{"move left", ClientMessage{Move: &Move{Direction: Left}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteClientMessage(&buf, tc.msg); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := ReadClientMessage(NewFrameReader(&buf))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			compareClientMessage(t, tc.msg, got)
		})
	}
}

func compareClientMessage(t *testing.T, want, got ClientMessage) {
	t.Helper()
	switch {
	case want.Join != nil:
		if got.Join == nil || got.Join.Name != want.Join.Name {
			t.Fatalf("Join mismatch: want %+v got %+v", want.Join, got.Join)
		}
	case want.PlaceBomb != nil:
		if got.PlaceBomb == nil {
			t.Fatalf("expected PlaceBomb, got %+v", got)
		}
	case want.PlaceBlock != nil:
		if got.PlaceBlock == nil {
			t.Fatalf("expected PlaceBlock, got %+v", got)
		}
	case want.Move != nil:
		if got.Move == nil || got.Move.Direction != want.Move.Direction {
			t.Fatalf("Move mismatch: want %+v got %+v", want.Move, got.Move)
		}
	}
}

func TestMoveUpWireBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteClientMessage(&buf, ClientMessage{Move: &Move{Direction: Up}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []byte{tagClientMove, byte(Up)}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	hello := ServerMessage{Hello: &Hello{
		ServerName:      "Test server",
		PlayersCount:    4,
		SizeX:           16,
		SizeY:           16,
		GameLength:      100,
		ExplosionRadius: 3,
		BombTimer:       5,
	}}
	var buf bytes.Buffer
	if err := WriteServerMessage(&buf, hello); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadServerMessage(NewFrameReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Hello == nil || *got.Hello != *hello.Hello {
		t.Fatalf("got %+v, want %+v", got.Hello, hello.Hello)
	}
}

func TestTurnWithOneBombPlacedEvent(t *testing.T) {
	turn := ServerMessage{Turn: &Turn{
		Turn: 7,
		Events: []Event{
			{BombPlaced: &BombPlaced{Id: 3, Position: Position{X: 5, Y: 9}}},
		},
	}}
	var buf bytes.Buffer
	if err := WriteServerMessage(&buf, turn); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadServerMessage(NewFrameReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Turn == nil || got.Turn.Turn != 7 || len(got.Turn.Events) != 1 {
		t.Fatalf("got %+v", got.Turn)
	}
	bp := got.Turn.Events[0].BombPlaced
	if bp == nil || bp.Id != 3 || bp.Position != (Position{X: 5, Y: 9}) {
		t.Fatalf("got BombPlaced %+v", bp)
	}
}

func TestGameStartedMapKeyOrderIsSorted(t *testing.T) {
	players := map[PlayerId]Player{
		3: {Name: "charlie"},
		1: {Name: "alice"},
		2: {Name: "bob"},
	}
	var buf bytes.Buffer
	if err := WriteServerMessage(&buf, ServerMessage{GameStarted: &GameStarted{Players: players}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := buf.Bytes()
	// tag(1) + count(4) then (id, name-len, name...) repeated; ids must
	// appear in ascending order regardless of Go's map iteration order.
	off := 5
	var ids []byte
	for i := 0; i < 3; i++ {
		ids = append(ids, b[off])
		nameLen := int(b[off+1])
		off += 2 + nameLen + 1 // id + namelen + name + address-len byte (empty address)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
}

func TestGameEndedRoundTrip(t *testing.T) {
	scores := map[PlayerId]Score{0: 2, 1: 0, 2: 5}
	var buf bytes.Buffer
	if err := WriteServerMessage(&buf, ServerMessage{GameEnded: &GameEnded{Scores: scores}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadServerMessage(NewFrameReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.GameEnded == nil || len(got.GameEnded.Scores) != 3 {
		t.Fatalf("got %+v", got.GameEnded)
	}
	for id, want := range scores {
		if got.GameEnded.Scores[id] != want {
			t.Fatalf("score[%d] = %d, want %d", id, got.GameEnded.Scores[id], want)
		}
	}
}

func TestBombExplodedEmptySequences(t *testing.T) {
	ev := Event{BombExploded: &BombExploded{Id: 9}}
	var buf bytes.Buffer
	if err := WriteEvent(&buf, ev); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadEvent(NewFrameReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.BombExploded == nil || len(got.BombExploded.RobotsDestroyed) != 0 || len(got.BombExploded.BlocksDestroyed) != 0 {
		t.Fatalf("got %+v", got.BombExploded)
	}
}

func TestStringBoundaryLengths(t *testing.T) {
	for _, n := range []int{0, 1, 255} {
		name := make([]byte, n)
		for i := range name {
			name[i] = 'a'
		}
		var buf bytes.Buffer
		if err := WriteString(&buf, string(name)); err != nil {
			t.Fatalf("write len %d: %v", n, err)
		}
		got, err := ReadString(NewFrameReader(&buf))
		if err != nil {
			t.Fatalf("read len %d: %v", n, err)
		}
		if got != string(name) {
			t.Fatalf("len %d round trip mismatch", n)
		}
	}
}

func TestWriteStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, string(make([]byte, 256))); err == nil {
		t.Fatal("expected error for 256-byte string")
	}
}

func TestReadDirectionRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(4)
	_, err := ReadDirection(NewFrameReader(&buf))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func TestReadClientMessageUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(200)
	_, err := ReadClientMessage(NewFrameReader(&buf))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
}

func TestShortReadReturnsErrShortRead(t *testing.T) {
	buf := bytes.NewReader([]byte{tagClientMove})
	_, err := ReadClientMessage(NewFrameReader(buf))
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("got %v, want ErrShortRead", err)
	}
}

func TestInputMessageSingleByte(t *testing.T) {
	msg, err := ReadInputMessage([]byte{tagInputPlaceBomb})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.PlaceBomb == nil {
		t.Fatalf("got %+v, want PlaceBomb", msg)
	}

	var buf bytes.Buffer
	if err := WriteInputMessage(&buf, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{tagInputPlaceBomb}) {
		t.Fatalf("got % x", buf.Bytes())
	}
}

func TestInputMessageRejectsTrailingData(t *testing.T) {
	_, err := ReadInputMessage([]byte{tagInputPlaceBomb, 0xff})
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("got %v, want ErrTrailingData", err)
	}
}

func TestInputMessageMoveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInputMessage(&buf, InputMessage{Move: &InputMove{Direction: Down}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg, err := ReadInputMessage(buf.Bytes())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Move == nil || msg.Move.Direction != Down {
		t.Fatalf("got %+v", msg.Move)
	}
}

func TestDrawMessageLobbyEncodesWithoutError(t *testing.T) {
	lobby := DrawMessage{Lobby: &Lobby{
		ServerName:      "Test server",
		PlayersCount:    4,
		SizeX:           16,
		SizeY:           16,
		GameLength:      100,
		ExplosionRadius: 3,
		BombTimer:       5,
		Players: map[PlayerId]Player{
			0: {Name: "alice", Address: "127.0.0.1:1"},
			1: {Name: "bob", Address: "127.0.0.1:2"},
		},
	}}
	var buf bytes.Buffer
	if err := WriteDrawMessage(&buf, lobby); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty datagram")
	}
}

func TestDrawMessageGameEncodesWithoutError(t *testing.T) {
	game := DrawMessage{Game: &Game{
		ServerName: "Test server",
		SizeX:      16,
		SizeY:      16,
		GameLength: 100,
		Turn:       3,
		Players: map[PlayerId]Player{
			0: {Name: "alice"},
		},
		PlayerPositions: map[PlayerId]Position{0: {X: 1, Y: 2}},
		Blocks:          []Position{{X: 3, Y: 3}},
		Bombs:           []Bomb{{Position: Position{X: 4, Y: 4}, Timer: 2}},
		Explosions:      []Position{{X: 4, Y: 4}},
		Scores:          map[PlayerId]Score{0: 1},
	}}
	var buf bytes.Buffer
	if err := WriteDrawMessage(&buf, game); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty datagram")
	}
}

// TestGameEndedRoundTripFullPlayerIdSpace exercises the map side of the
// round-trip property for 256+ entries: PlayerId is a uint8, so every one
// of its 256 possible values fills the map, the largest map this wire
// format can ever carry.
func TestGameEndedRoundTripFullPlayerIdSpace(t *testing.T) {
	scores := make(map[PlayerId]Score, 256)
	for i := 0; i < 256; i++ {
		scores[PlayerId(i)] = Score(i * 7)
	}
	var buf bytes.Buffer
	if err := WriteServerMessage(&buf, ServerMessage{GameEnded: &GameEnded{Scores: scores}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadServerMessage(NewFrameReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.GameEnded == nil || len(got.GameEnded.Scores) != 256 {
		t.Fatalf("got %d entries, want 256", len(got.GameEnded.Scores))
	}
	for id, want := range scores {
		if got.GameEnded.Scores[id] != want {
			t.Fatalf("score[%d] = %d, want %d", id, got.GameEnded.Scores[id], want)
		}
	}
}

// TestBombExplodedRoundTripOverflowsUint16Length exercises the sequence
// side of the round-trip property for a length beyond what a uint16 count
// could represent, confirming the u32 sequence-length prefix is honored
// on both ends rather than silently truncated.
func TestBombExplodedRoundTripOverflowsUint16Length(t *testing.T) {
	const n = 70000
	robots := make([]PlayerId, n)
	for i := range robots {
		robots[i] = PlayerId(i % 256)
	}
	ev := Event{BombExploded: &BombExploded{Id: 42, RobotsDestroyed: robots}}
	var buf bytes.Buffer
	if err := WriteEvent(&buf, ev); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadEvent(NewFrameReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.BombExploded == nil || len(got.BombExploded.RobotsDestroyed) != n {
		t.Fatalf("got %d robots, want %d", len(got.BombExploded.RobotsDestroyed), n)
	}
	for i, id := range got.BombExploded.RobotsDestroyed {
		if id != PlayerId(i%256) {
			t.Fatalf("robots[%d] = %d, want %d", i, id, i%256)
		}
	}
}
