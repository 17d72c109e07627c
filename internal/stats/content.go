package stats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jjckrbbt/wrapped/internal/config"
	"github.com/jjckrbbt/wrapped/internal/repository"
)

const (
	timeMachineMessages    = 5
	timeMachineAttachments = 3
)

func (u urls) messageInfo(r repository.MessageRow, likes int64) MessageInfo {
	return MessageInfo{
		MessageID:       strconv.FormatInt(r.MessageID, 10),
		Content:         r.Content,
		SenderID:        strconv.FormatInt(r.AuthorID, 10),
		SenderHandle:    r.AuthorName,
		SenderAvatarURL: u.avatar(r.AuthorName),
		Timestamp:       r.Timestamp,
		Likes:           likes,
		ChannelID:       strconv.FormatInt(r.ChannelID, 10),
		ChannelName:     r.ChannelName,
	}
}

func (u urls) attachmentInfo(r repository.AttachmentRow, likes int64) AttachmentInfo {
	return AttachmentInfo{
		AttachmentID:          strconv.FormatInt(r.ID, 10),
		FileName:              r.FileName,
		URL:                   u.attachment(r.ID, r.FileName),
		SenderID:              strconv.FormatInt(r.SenderID, 10),
		SenderHandle:          r.SenderHandle,
		SenderAvatarURL:       u.avatar(r.SenderHandle),
		Timestamp:             r.Timestamp,
		Likes:                 likes,
		RelatedMessageID:      strconv.FormatInt(r.RelatedMessageID, 10),
		RelatedChannelID:      strconv.FormatInt(r.ChannelID, 10),
		RelatedChannelName:    r.ChannelName,
		RelatedMessageContent: r.Content,
	}
}

// Message returns one message with its like count.
func (s *Service) Message(ctx context.Context, year int, id int64) (MessageInfo, error) {
	p, err := s.profile(year)
	if err != nil {
		return MessageInfo{}, err
	}
	row, err := s.queries.GetMessage(ctx, repository.GetMessageParams{MessageID: id, Year: int32(year)})
	if err != nil {
		return MessageInfo{}, notFound(err, "message")
	}
	return s.withMessageLikes(ctx, p, row)
}

// Attachment returns one attachment with its like count.
func (s *Service) Attachment(ctx context.Context, year int, id int64) (AttachmentInfo, error) {
	p, err := s.profile(year)
	if err != nil {
		return AttachmentInfo{}, err
	}
	row, err := s.queries.GetAttachment(ctx, repository.GetAttachmentParams{ID: id, Year: int32(year)})
	if err != nil {
		return AttachmentInfo{}, notFound(err, "attachment")
	}
	return s.withAttachmentLikes(ctx, p, row)
}

// RandomMessage picks a message of at least minLength characters, optionally
// restricted to ones containing a link.
func (s *Service) RandomMessage(ctx context.Context, year, minLength int, linksOnly bool) (MessageInfo, error) {
	p, err := s.profile(year)
	if err != nil {
		return MessageInfo{}, err
	}
	row, err := s.queries.GetRandomMessage(ctx, repository.GetRandomMessageParams{
		Year:      int32(year),
		MinLength: int32(minLength),
		LinksOnly: linksOnly,
	})
	if err != nil {
		return MessageInfo{}, notFound(err, "random message")
	}
	return s.withMessageLikes(ctx, p, row)
}

// RandomAttachment picks an attachment not in excludedIDs. With videoOnly
// it only considers the profile's video extensions, otherwise it skips the
// profile's excluded extensions.
func (s *Service) RandomAttachment(ctx context.Context, year int, excludedIDs []int64, videoOnly bool) (AttachmentInfo, error) {
	p, err := s.profile(year)
	if err != nil {
		return AttachmentInfo{}, err
	}
	row, err := s.queries.GetRandomAttachment(ctx, repository.GetRandomAttachmentParams{
		Year:               int32(year),
		ExcludedIDs:        excludedIDs,
		VideoOnly:          videoOnly,
		VideoExtensions:    p.VideoExtensions,
		ExcludedExtensions: p.ExcludedExtensions,
	})
	if err != nil {
		return AttachmentInfo{}, notFound(err, "random attachment")
	}
	return s.withAttachmentLikes(ctx, p, row)
}

// TimeMachine samples content posted during the UTC day starting at date.
func (s *Service) TimeMachine(ctx context.Context, year int, date time.Time) (TimeMachine, error) {
	p, err := s.profile(year)
	if err != nil {
		return TimeMachine{}, err
	}
	d := date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Unix()
	params := repository.ListInRangeParams{Start: start, End: start + 86400, Year: int32(year)}

	params.Limit = timeMachineAttachments
	attRows, err := s.queries.ListAttachmentsInRange(ctx, params)
	if err != nil {
		return TimeMachine{}, fmt.Errorf("failed to list attachments for time machine: %w", err)
	}
	params.Limit = timeMachineMessages
	msgRows, err := s.queries.ListMessagesInRange(ctx, params)
	if err != nil {
		return TimeMachine{}, fmt.Errorf("failed to list messages for time machine: %w", err)
	}

	u := urls{profile: p}
	tm := TimeMachine{
		Messages:    make([]MessageInfo, 0, len(msgRows)),
		Attachments: make([]AttachmentInfo, 0, len(attRows)),
	}
	for _, r := range attRows {
		tm.Attachments = append(tm.Attachments, u.attachmentInfo(r, 0))
	}
	for _, r := range msgRows {
		tm.Messages = append(tm.Messages, u.messageInfo(r, 0))
	}
	return tm, nil
}

func (s *Service) withMessageLikes(ctx context.Context, p config.YearProfile, row repository.MessageRow) (MessageInfo, error) {
	likes, err := s.queries.CountMessageLikes(ctx, row.MessageID)
	if err != nil {
		return MessageInfo{}, fmt.Errorf("failed to count likes for message %d: %w", row.MessageID, err)
	}
	return urls{profile: p}.messageInfo(row, likes), nil
}

func (s *Service) withAttachmentLikes(ctx context.Context, p config.YearProfile, row repository.AttachmentRow) (AttachmentInfo, error) {
	likes, err := s.queries.CountAttachmentLikes(ctx, row.ID)
	if err != nil {
		return AttachmentInfo{}, fmt.Errorf("failed to count likes for attachment %d: %w", row.ID, err)
	}
	return urls{profile: p}.attachmentInfo(row, likes), nil
}
