package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleCreateGame(ctx context.Context, playerID string, _ *Message) error {
	room, err := that.sessions.CreateRoom(ctx, playerID)
	if err != nil {
		return err
	}

	member, ok := room.Member(playerID)
	if !ok {
		return fmt.Errorf("created room %s is missing its creator", room.ID)
	}

	return that.reply(playerID, actionGameCreated, statePayload{
		Room:  room.ID,
		Mark:  member.Mark,
		State: *room.Game,
	})
}

func (that *Server) handleJoinGame(ctx context.Context, playerID string, msg *Message) error {
	var payload roomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	// every member, the joiner included, hears about the join from the
	// session manager's broadcast
	if _, _, err := that.sessions.JoinRoom(ctx, playerID, payload.Room); err != nil {
		return err
	}

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, playerID string, msg *Message) error {
	var payload movePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if _, err := that.sessions.SubmitMove(ctx, playerID, payload.Room, payload.Cell); err != nil {
		return err
	}

	return nil
}

func (that *Server) handleRestartGame(ctx context.Context, playerID string, msg *Message) error {
	var payload roomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if _, err := that.sessions.RestartRoom(ctx, playerID, payload.Room); err != nil {
		return err
	}

	return nil
}

func (that *Server) handleLeaveGame(ctx context.Context, playerID string, msg *Message) error {
	var payload roomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if err := that.sessions.LeaveRoom(ctx, playerID, payload.Room); err != nil {
		return err
	}

	return that.reply(playerID, actionLeftGame, roomPayload{Room: payload.Room})
}

func (that *Server) reply(playerID, action string, payload any) error {
	message, err := newMessage(action, payload)
	if err != nil {
		return err
	}

	conn, ok := that.registry.get(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", errPlayerNotConnected, playerID)
	}

	return conn.send(message)
}
