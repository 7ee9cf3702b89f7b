package protocol

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Tag bytes for each sum type, matching the wire contract exactly.
const (
	tagServerHello          = 0
	tagServerAcceptedPlayer = 1
	tagServerGameStarted    = 2
	tagServerTurn           = 3
	tagServerGameEnded      = 4
)

const (
	tagEventBombPlaced   = 0
	tagEventBombExploded = 1
	tagEventPlayerMoved  = 2
	tagEventBlockPlaced  = 3
)

const (
	tagClientJoin       = 0
	tagClientPlaceBomb  = 1
	tagClientPlaceBlock = 2
	tagClientMove       = 3
)

const (
	tagDrawLobby = 0
	tagDrawGame  = 1
)

const (
	tagInputPlaceBomb  = 0
	tagInputPlaceBlock = 1
	tagInputMove       = 2
)

// ReadSeqLen reads the u32 element count that precedes every sequence and
// map on the wire.
func ReadSeqLen(f *FrameReader) (uint32, error) {
	return ReadUint32(f)
}

// WriteSeqLen writes a sequence or map's u32 element count.
func WriteSeqLen(w io.Writer, n int) error {
	return WriteUint32(w, uint32(n))
}

// sortedPlayerIds returns m's keys in ascending order, satisfying the wire
// format's natural-key-order requirement for maps keyed by identity.
func sortedPlayerIds(m map[PlayerId]Player) []PlayerId {
	ids := make([]PlayerId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedScoreIds(m map[PlayerId]Score) []PlayerId {
	ids := make([]PlayerId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedPositionIds(m map[PlayerId]Position) []PlayerId {
	ids := make([]PlayerId, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// --- Position ---

func ReadPosition(f *FrameReader) (Position, error) {
	x, err := ReadUint16(f)
	if err != nil {
		return Position{}, err
	}
	y, err := ReadUint16(f)
	if err != nil {
		return Position{}, err
	}
	return Position{X: x, Y: y}, nil
}

func WritePosition(w io.Writer, p Position) error {
	if err := WriteUint16(w, p.X); err != nil {
		return err
	}
	return WriteUint16(w, p.Y)
}

// --- Player ---

func ReadPlayer(f *FrameReader) (Player, error) {
	name, err := ReadString(f)
	if err != nil {
		return Player{}, err
	}
	addr, err := ReadString(f)
	if err != nil {
		return Player{}, err
	}
	return Player{Name: name, Address: addr}, nil
}

func WritePlayer(w io.Writer, p Player) error {
	if err := WriteString(w, p.Name); err != nil {
		return err
	}
	return WriteString(w, p.Address)
}

// --- Bomb ---

func ReadBomb(f *FrameReader) (Bomb, error) {
	pos, err := ReadPosition(f)
	if err != nil {
		return Bomb{}, err
	}
	timer, err := ReadUint16(f)
	if err != nil {
		return Bomb{}, err
	}
	return Bomb{Position: pos, Timer: timer}, nil
}

func WriteBomb(w io.Writer, b Bomb) error {
	if err := WritePosition(w, b.Position); err != nil {
		return err
	}
	return WriteUint16(w, b.Timer)
}

// --- ClientMessage ---

// ReadClientMessage decodes one ClientMessage from f.
func ReadClientMessage(f *FrameReader) (ClientMessage, error) {
	tag, err := ReadUint8(f)
	if err != nil {
		return ClientMessage{}, err
	}
	switch tag {
	case tagClientJoin:
		name, err := ReadString(f)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Join: &Join{Name: name}}, nil
	case tagClientPlaceBomb:
		return ClientMessage{PlaceBomb: &PlaceBomb{}}, nil
	case tagClientPlaceBlock:
		return ClientMessage{PlaceBlock: &PlaceBlock{}}, nil
	case tagClientMove:
		d, err := ReadDirection(f)
		if err != nil {
			return ClientMessage{}, err
		}
		return ClientMessage{Move: &Move{Direction: d}}, nil
	default:
		return ClientMessage{}, fmt.Errorf("%w: client message tag %d", ErrMalformed, tag)
	}
}

// WriteClientMessage encodes m to w. Exactly one field of m must be set.
func WriteClientMessage(w io.Writer, m ClientMessage) error {
	switch {
	case m.Join != nil:
		if err := WriteUint8(w, tagClientJoin); err != nil {
			return err
		}
		return WriteString(w, m.Join.Name)
	case m.PlaceBomb != nil:
		return WriteUint8(w, tagClientPlaceBomb)
	case m.PlaceBlock != nil:
		return WriteUint8(w, tagClientPlaceBlock)
	case m.Move != nil:
		if err := WriteUint8(w, tagClientMove); err != nil {
			return err
		}
		return WriteDirection(w, m.Move.Direction)
	default:
		return fmt.Errorf("protocol: empty ClientMessage")
	}
}

// --- Event ---

func ReadEvent(f *FrameReader) (Event, error) {
	tag, err := ReadUint8(f)
	if err != nil {
		return Event{}, err
	}
	switch tag {
	case tagEventBombPlaced:
		id, err := ReadUint32(f)
		if err != nil {
			return Event{}, err
		}
		pos, err := ReadPosition(f)
		if err != nil {
			return Event{}, err
		}
		return Event{BombPlaced: &BombPlaced{Id: BombId(id), Position: pos}}, nil
	case tagEventBombExploded:
		id, err := ReadUint32(f)
		if err != nil {
			return Event{}, err
		}
		robotsLen, err := ReadSeqLen(f)
		if err != nil {
			return Event{}, err
		}
		robots := make([]PlayerId, robotsLen)
		for i := range robots {
			b, err := ReadUint8(f)
			if err != nil {
				return Event{}, err
			}
			robots[i] = PlayerId(b)
		}
		blocksLen, err := ReadSeqLen(f)
		if err != nil {
			return Event{}, err
		}
		blocks := make([]Position, blocksLen)
		for i := range blocks {
			p, err := ReadPosition(f)
			if err != nil {
				return Event{}, err
			}
			blocks[i] = p
		}
		return Event{BombExploded: &BombExploded{Id: BombId(id), RobotsDestroyed: robots, BlocksDestroyed: blocks}}, nil
	case tagEventPlayerMoved:
		id, err := ReadUint8(f)
		if err != nil {
			return Event{}, err
		}
		pos, err := ReadPosition(f)
		if err != nil {
			return Event{}, err
		}
		return Event{PlayerMoved: &PlayerMoved{Id: PlayerId(id), Position: pos}}, nil
	case tagEventBlockPlaced:
		pos, err := ReadPosition(f)
		if err != nil {
			return Event{}, err
		}
		return Event{BlockPlaced: &BlockPlaced{Position: pos}}, nil
	default:
		return Event{}, fmt.Errorf("%w: event tag %d", ErrMalformed, tag)
	}
}

func WriteEvent(w io.Writer, e Event) error {
	switch {
	case e.BombPlaced != nil:
		if err := WriteUint8(w, tagEventBombPlaced); err != nil {
			return err
		}
		if err := WriteUint32(w, uint32(e.BombPlaced.Id)); err != nil {
			return err
		}
		return WritePosition(w, e.BombPlaced.Position)
	case e.BombExploded != nil:
		if err := WriteUint8(w, tagEventBombExploded); err != nil {
			return err
		}
		if err := WriteUint32(w, uint32(e.BombExploded.Id)); err != nil {
			return err
		}
		if err := WriteSeqLen(w, len(e.BombExploded.RobotsDestroyed)); err != nil {
			return err
		}
		for _, id := range e.BombExploded.RobotsDestroyed {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
		}
		if err := WriteSeqLen(w, len(e.BombExploded.BlocksDestroyed)); err != nil {
			return err
		}
		for _, p := range e.BombExploded.BlocksDestroyed {
			if err := WritePosition(w, p); err != nil {
				return err
			}
		}
		return nil
	case e.PlayerMoved != nil:
		if err := WriteUint8(w, tagEventPlayerMoved); err != nil {
			return err
		}
		if err := WriteUint8(w, uint8(e.PlayerMoved.Id)); err != nil {
			return err
		}
		return WritePosition(w, e.PlayerMoved.Position)
	case e.BlockPlaced != nil:
		if err := WriteUint8(w, tagEventBlockPlaced); err != nil {
			return err
		}
		return WritePosition(w, e.BlockPlaced.Position)
	default:
		return fmt.Errorf("protocol: empty Event")
	}
}

// --- ServerMessage ---

func ReadServerMessage(f *FrameReader) (ServerMessage, error) {
	tag, err := ReadUint8(f)
	if err != nil {
		return ServerMessage{}, err
	}
	switch tag {
	case tagServerHello:
		name, err := ReadString(f)
		if err != nil {
			return ServerMessage{}, err
		}
		playersCount, err := ReadUint8(f)
		if err != nil {
			return ServerMessage{}, err
		}
		sizeX, err := ReadUint16(f)
		if err != nil {
			return ServerMessage{}, err
		}
		sizeY, err := ReadUint16(f)
		if err != nil {
			return ServerMessage{}, err
		}
		gameLength, err := ReadUint16(f)
		if err != nil {
			return ServerMessage{}, err
		}
		explosionRadius, err := ReadUint16(f)
		if err != nil {
			return ServerMessage{}, err
		}
		bombTimer, err := ReadUint16(f)
		if err != nil {
			return ServerMessage{}, err
		}
		return ServerMessage{Hello: &Hello{
			ServerName:      name,
			PlayersCount:    playersCount,
			SizeX:           sizeX,
			SizeY:           sizeY,
			GameLength:      gameLength,
			ExplosionRadius: explosionRadius,
			BombTimer:       bombTimer,
		}}, nil
	case tagServerAcceptedPlayer:
		id, err := ReadUint8(f)
		if err != nil {
			return ServerMessage{}, err
		}
		player, err := ReadPlayer(f)
		if err != nil {
			return ServerMessage{}, err
		}
		return ServerMessage{AcceptedPlayer: &AcceptedPlayer{Id: PlayerId(id), Player: player}}, nil
	case tagServerGameStarted:
		n, err := ReadSeqLen(f)
		if err != nil {
			return ServerMessage{}, err
		}
		players := make(map[PlayerId]Player, n)
		for i := uint32(0); i < n; i++ {
			id, err := ReadUint8(f)
			if err != nil {
				return ServerMessage{}, err
			}
			player, err := ReadPlayer(f)
			if err != nil {
				return ServerMessage{}, err
			}
			players[PlayerId(id)] = player
		}
		return ServerMessage{GameStarted: &GameStarted{Players: players}}, nil
	case tagServerTurn:
		turnNo, err := ReadUint16(f)
		if err != nil {
			return ServerMessage{}, err
		}
		n, err := ReadSeqLen(f)
		if err != nil {
			return ServerMessage{}, err
		}
		events := make([]Event, n)
		for i := range events {
			ev, err := ReadEvent(f)
			if err != nil {
				return ServerMessage{}, err
			}
			events[i] = ev
		}
		return ServerMessage{Turn: &Turn{Turn: turnNo, Events: events}}, nil
	case tagServerGameEnded:
		n, err := ReadSeqLen(f)
		if err != nil {
			return ServerMessage{}, err
		}
		scores := make(map[PlayerId]Score, n)
		for i := uint32(0); i < n; i++ {
			id, err := ReadUint8(f)
			if err != nil {
				return ServerMessage{}, err
			}
			score, err := ReadUint32(f)
			if err != nil {
				return ServerMessage{}, err
			}
			scores[PlayerId(id)] = Score(score)
		}
		return ServerMessage{GameEnded: &GameEnded{Scores: scores}}, nil
	default:
		return ServerMessage{}, fmt.Errorf("%w: server message tag %d", ErrMalformed, tag)
	}
}

func WriteServerMessage(w io.Writer, m ServerMessage) error {
	switch {
	case m.Hello != nil:
		h := m.Hello
		if err := WriteUint8(w, tagServerHello); err != nil {
			return err
		}
		if err := WriteString(w, h.ServerName); err != nil {
			return err
		}
		if err := WriteUint8(w, h.PlayersCount); err != nil {
			return err
		}
		if err := WriteUint16(w, h.SizeX); err != nil {
			return err
		}
		if err := WriteUint16(w, h.SizeY); err != nil {
			return err
		}
		if err := WriteUint16(w, h.GameLength); err != nil {
			return err
		}
		if err := WriteUint16(w, h.ExplosionRadius); err != nil {
			return err
		}
		return WriteUint16(w, h.BombTimer)
	case m.AcceptedPlayer != nil:
		if err := WriteUint8(w, tagServerAcceptedPlayer); err != nil {
			return err
		}
		if err := WriteUint8(w, uint8(m.AcceptedPlayer.Id)); err != nil {
			return err
		}
		return WritePlayer(w, m.AcceptedPlayer.Player)
	case m.GameStarted != nil:
		if err := WriteUint8(w, tagServerGameStarted); err != nil {
			return err
		}
		ids := sortedPlayerIds(m.GameStarted.Players)
		if err := WriteSeqLen(w, len(ids)); err != nil {
			return err
		}
		for _, id := range ids {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
			if err := WritePlayer(w, m.GameStarted.Players[id]); err != nil {
				return err
			}
		}
		return nil
	case m.Turn != nil:
		if err := WriteUint8(w, tagServerTurn); err != nil {
			return err
		}
		if err := WriteUint16(w, m.Turn.Turn); err != nil {
			return err
		}
		if err := WriteSeqLen(w, len(m.Turn.Events)); err != nil {
			return err
		}
		for _, ev := range m.Turn.Events {
			if err := WriteEvent(w, ev); err != nil {
				return err
			}
		}
		return nil
	case m.GameEnded != nil:
		if err := WriteUint8(w, tagServerGameEnded); err != nil {
			return err
		}
		ids := sortedScoreIds(m.GameEnded.Scores)
		if err := WriteSeqLen(w, len(ids)); err != nil {
			return err
		}
		for _, id := range ids {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
			if err := WriteUint32(w, uint32(m.GameEnded.Scores[id])); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("protocol: empty ServerMessage")
	}
}

// --- InputMessage (GUI -> client, over UDP) ---

// ReadInputMessage decodes a single InputMessage from a complete UDP
// datagram, rejecting any trailing bytes left after the value.
func ReadInputMessage(datagram []byte) (InputMessage, error) {
	f := NewFrameReader(bytes.NewReader(datagram))
	tag, err := ReadUint8(f)
	if err != nil {
		return InputMessage{}, err
	}
	var msg InputMessage
	switch tag {
	case tagInputPlaceBomb:
		msg = InputMessage{PlaceBomb: &InputPlaceBomb{}}
	case tagInputPlaceBlock:
		msg = InputMessage{PlaceBlock: &InputPlaceBlock{}}
	case tagInputMove:
		d, err := ReadDirection(f)
		if err != nil {
			return InputMessage{}, err
		}
		msg = InputMessage{Move: &InputMove{Direction: d}}
	default:
		return InputMessage{}, fmt.Errorf("%w: input message tag %d", ErrMalformed, tag)
	}
	if f.Consumed() != len(datagram) {
		return InputMessage{}, errTrailingData(f.Consumed(), len(datagram))
	}
	return msg, nil
}

// WriteInputMessage encodes m as a single UDP datagram.
func WriteInputMessage(w io.Writer, m InputMessage) error {
	switch {
	case m.PlaceBomb != nil:
		return WriteUint8(w, tagInputPlaceBomb)
	case m.PlaceBlock != nil:
		return WriteUint8(w, tagInputPlaceBlock)
	case m.Move != nil:
		if err := WriteUint8(w, tagInputMove); err != nil {
			return err
		}
		return WriteDirection(w, m.Move.Direction)
	default:
		return fmt.Errorf("protocol: empty InputMessage")
	}
}

// --- DrawMessage (client -> GUI, over UDP) ---

// WriteDrawMessage encodes m, a datagram the GUI will parse whole.
func WriteDrawMessage(w io.Writer, m DrawMessage) error {
	switch {
	case m.Lobby != nil:
		l := m.Lobby
		if err := WriteUint8(w, tagDrawLobby); err != nil {
			return err
		}
		if err := WriteString(w, l.ServerName); err != nil {
			return err
		}
		if err := WriteUint8(w, l.PlayersCount); err != nil {
			return err
		}
		if err := WriteUint16(w, l.SizeX); err != nil {
			return err
		}
		if err := WriteUint16(w, l.SizeY); err != nil {
			return err
		}
		if err := WriteUint16(w, l.GameLength); err != nil {
			return err
		}
		if err := WriteUint16(w, l.ExplosionRadius); err != nil {
			return err
		}
		if err := WriteUint16(w, l.BombTimer); err != nil {
			return err
		}
		ids := sortedPlayerIds(l.Players)
		if err := WriteSeqLen(w, len(ids)); err != nil {
			return err
		}
		for _, id := range ids {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
			if err := WritePlayer(w, l.Players[id]); err != nil {
				return err
			}
		}
		return nil
	case m.Game != nil:
		g := m.Game
		if err := WriteUint8(w, tagDrawGame); err != nil {
			return err
		}
		if err := WriteString(w, g.ServerName); err != nil {
			return err
		}
		if err := WriteUint16(w, g.SizeX); err != nil {
			return err
		}
		if err := WriteUint16(w, g.SizeY); err != nil {
			return err
		}
		if err := WriteUint16(w, g.GameLength); err != nil {
			return err
		}
		if err := WriteUint16(w, g.Turn); err != nil {
			return err
		}
		playerIds := sortedPlayerIds(g.Players)
		if err := WriteSeqLen(w, len(playerIds)); err != nil {
			return err
		}
		for _, id := range playerIds {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
			if err := WritePlayer(w, g.Players[id]); err != nil {
				return err
			}
		}
		posIds := sortedPositionIds(g.PlayerPositions)
		if err := WriteSeqLen(w, len(posIds)); err != nil {
			return err
		}
		for _, id := range posIds {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
			if err := WritePosition(w, g.PlayerPositions[id]); err != nil {
				return err
			}
		}
		if err := WriteSeqLen(w, len(g.Blocks)); err != nil {
			return err
		}
		for _, p := range g.Blocks {
			if err := WritePosition(w, p); err != nil {
				return err
			}
		}
		if err := WriteSeqLen(w, len(g.Bombs)); err != nil {
			return err
		}
		for _, b := range g.Bombs {
			if err := WriteBomb(w, b); err != nil {
				return err
			}
		}
		if err := WriteSeqLen(w, len(g.Explosions)); err != nil {
			return err
		}
		for _, p := range g.Explosions {
			if err := WritePosition(w, p); err != nil {
				return err
			}
		}
		scoreIds := sortedScoreIds(g.Scores)
		if err := WriteSeqLen(w, len(scoreIds)); err != nil {
			return err
		}
		for _, id := range scoreIds {
			if err := WriteUint8(w, uint8(id)); err != nil {
				return err
			}
			if err := WriteUint32(w, uint32(g.Scores[id])); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("protocol: empty DrawMessage")
	}
}
