package reflection

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"google.golang.org/genai"
)

type fakeModels struct {
	text      string
	err       error
	gotModel  string
	gotPrompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotPrompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestGenAI(t *testing.T) {
	ctx := context.Background()
	counts := Counts{Musicians: 42, Organists: 7}

	convey.Convey("Given a model that answers", t, func() {
		fake := &fakeModels{text: "  Paz e harmonia.  "}
		g := newGenAI(fake, "")

		text, err := g.Generate(ctx, counts)

		convey.Convey("Then the trimmed text is returned", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(text, convey.ShouldEqual, "Paz e harmonia.")
		})

		convey.Convey("Then the prompt names both counts and the default model is used", func() {
			convey.So(fake.gotModel, convey.ShouldEqual, DefaultModel)
			convey.So(fake.gotPrompt, convey.ShouldContainSubstring, "42 músicos")
			convey.So(fake.gotPrompt, convey.ShouldContainSubstring, "7 organistas")
		})
	})

	convey.Convey("Given a model that answers with nothing", t, func() {
		g := newGenAI(&fakeModels{}, "custom")
		text, err := g.Generate(ctx, counts)

		convey.So(err, convey.ShouldBeNil)
		convey.So(text, convey.ShouldEqual, "Desejamos a todos um excelente ensaio e louvor!")
	})

	convey.Convey("Given a failing model", t, func() {
		boom := errors.New("quota exceeded")
		g := newGenAI(&fakeModels{err: boom}, "custom")
		text, err := g.Generate(ctx, counts)

		convey.Convey("Then the error fallback comes with the error", func() {
			convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
			convey.So(text, convey.ShouldEqual, "Que a música deste evento traga paz e harmonia a todos os corações.")
		})
	})

	convey.Convey("Given no API key", t, func() {
		_, err := NewGenAI(ctx, " ", "")
		convey.So(errors.Is(err, ErrMissingAPIKey), convey.ShouldBeTrue)
	})
}

func TestStatic(t *testing.T) {
	convey.Convey("Given the static generator", t, func() {
		text, err := Static{}.Generate(context.Background(), Counts{})
		convey.So(err, convey.ShouldBeNil)
		convey.So(text, convey.ShouldEqual, EmptyFallback())
	})
}
