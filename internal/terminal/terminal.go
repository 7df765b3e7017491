// Package terminal is a line-oriented presentation layer for a quiz session.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	appI18n "github.com/pavelanni/quiz/internal/i18n"
	"github.com/pavelanni/quiz/internal/quiz"
)

const progressWidth = 20

// Run drives s from its current state until the player declines a restart,
// input ends, or ctx is cancelled. Reaching EOF is not an error; cancellation
// returns ctx.Err() even while a prompt is waiting for input.
func Run(ctx context.Context, s *quiz.Session, in io.Reader, out io.Writer) error {
	done := make(chan struct{})
	defer close(done)

	p := &player{ctx: ctx, s: s, input: readLines(in, done), out: out}
	p.printf("%s (%s)\n", appI18n.T(ctx, "AppTitle"), appI18n.Tp(ctx, "QuestionsCount", s.Total()))
	err := p.loop()
	if errors.Is(err, io.EOF) {
		p.println("")
		return nil
	}
	return err
}

type inputLine struct {
	text string
	err  error
}

// readLines scans in on its own goroutine so that a blocked read never
// delays cancellation. The final value carries io.EOF or the read error.
func readLines(in io.Reader, done <-chan struct{}) <-chan inputLine {
	ch := make(chan inputLine)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- inputLine{text: sc.Text()}:
			case <-done:
				return
			}
		}
		last := inputLine{err: io.EOF}
		if err := sc.Err(); err != nil {
			last.err = fmt.Errorf("read input: %w", err)
		}
		select {
		case ch <- last:
		case <-done:
		}
	}()
	return ch
}

type player struct {
	ctx   context.Context
	s     *quiz.Session
	input <-chan inputLine
	out   io.Writer
}

func (p *player) loop() error {
	for {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		st := p.s.State()
		if st.Finished() {
			again, err := p.results()
			if err != nil || !again {
				return err
			}
			p.s.Restart()
			continue
		}
		if err := p.question(st); err != nil {
			return err
		}
	}
}

func (p *player) question(st quiz.State) error {
	q := st.Question
	p.println("")
	p.println(appI18n.Td(p.ctx, "QuestionN", map[string]any{"Number": q.Number}))
	p.println(q.Text)
	for i, c := range q.Choices {
		p.printf("  %d) %s\n", i+1, c)
	}
	p.printf("%s  %s %d\n", progressBar(st.Progress), appI18n.T(p.ctx, "Score"), st.Score)

	var out quiz.Outcome
	for {
		p.printf("%s ", appI18n.Td(p.ctx, "ChoicePrompt", map[string]any{"Count": len(q.Choices)}))
		line, err := p.readLine()
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			out, err = p.s.SelectAnswer(n - 1)
		}
		if err == nil {
			break
		}
		slog.Debug("selection rejected", "input", line, "error", err)
		p.println(appI18n.Td(p.ctx, "InvalidChoice", map[string]any{"Count": len(q.Choices)}))
	}

	if out.Correct {
		p.printf("%s %s\n", appI18n.T(p.ctx, "Correct"), appI18n.T(p.ctx, "CorrectMessage"))
	} else {
		p.printf("%s %s\n", appI18n.T(p.ctx, "Wrong"), appI18n.T(p.ctx, "WrongMessage"))
	}
	p.println(appI18n.Td(p.ctx, "CorrectAnswerIs", map[string]any{"Answer": q.Choices[out.CorrectChoice]}))

	p.printf("%s ", appI18n.T(p.ctx, "ContinuePrompt"))
	if _, err := p.readLine(); err != nil {
		return err
	}
	_, err := p.s.Advance()
	return err
}

func (p *player) results() (bool, error) {
	res, _ := p.s.Result()
	p.println("")
	p.println(appI18n.T(p.ctx, "QuizFinished"))
	p.printf("%s %.0f%%\n", progressBar(res.Fraction()), res.Percent)
	p.println(appI18n.Td(p.ctx, "ResultSummary", map[string]any{"Score": res.Score, "Total": res.Total}))
	p.printf("%s ", appI18n.T(p.ctx, "RestartPrompt"))

	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes", "д", "да":
		return true, nil
	}
	p.println(appI18n.T(p.ctx, "Goodbye"))
	return false, nil
}

func (p *player) readLine() (string, error) {
	select {
	case <-p.ctx.Done():
		p.println("")
		return "", p.ctx.Err()
	case l := <-p.input:
		return strings.TrimSpace(l.text), l.err
	}
}

func (p *player) println(s string) {
	fmt.Fprintln(p.out, s)
}

func (p *player) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// progressBar draws a fixed-width bar for a fraction in [0, 1].
func progressBar(f float64) string {
	filled := int(f * progressWidth)
	filled = min(max(filled, 0), progressWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}
