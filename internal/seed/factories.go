// Package seed creates demo data through the domain services. Intended for
// development and testing only.
package seed

import (
	"fmt"
	"strings"

	"github.com/Pratik1374/API-GraphQL/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	categories = []string{
		"landscape", "portrait", "anime", "abstract", "sci-fi", "fantasy",
		"architecture", "food", "wildlife", "cyberpunk", "watercolor", "pixel-art",
	}

	modelTags = []string{
		"sdxl", "sd-1.5", "flux-dev", "flux-schnell", "dall-e-3",
		"midjourney-v6", "stable-cascade", "kandinsky-3", "lora", "controlnet",
	}

	commentTemplates = []string{
		"Love the %s in this one!",
		"What sampler did you use for the %s?",
		"The %s turned out %s.",
		"Could you share the seed? The %s is %s.",
		"%s work, the %s really pops.",
	}
)

// Factory builds randomized service inputs.
type Factory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Account returns a unique email and handle pair.
func (f *Factory) Account() (email, handle string) {
	f.seq++
	handle = fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), f.seq)
	return handle + "@" + f.faker.DomainName(), handle
}

// RegisterInput builds a profile for an identity account.
func (f *Factory) RegisterInput(subject, email, handle string) service.RegisterInput {
	return service.RegisterInput{
		CallerID:     subject,
		Email:        email,
		Name:         f.faker.Name(),
		UserID:       handle,
		Mobile:       f.faker.Phone(),
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Gender:       f.faker.Gender(),
		Bio:          f.faker.Sentence(10),
	}
}

// PostInput builds a generated-image post.
func (f *Factory) PostInput(creator string) service.CreatePostInput {
	n := f.faker.Number(1, 3)
	tags := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(tags) < n {
		tag := f.faker.RandomString(modelTags)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	return service.CreatePostInput{
		CallerID:    creator,
		Prompt:      f.faker.Sentence(8),
		Category:    f.faker.RandomString(categories),
		Description: f.faker.Paragraph(1, 2, 12, " "),
		OutputURL:   fmt.Sprintf("https://picsum.photos/seed/%s/1024/1024", f.faker.UUID()),
		Public:      f.faker.Number(1, 10) <= 8,
		AIModelTags: tags,
	}
}

// CommentText builds a short comment.
func (f *Factory) CommentText() string {
	tmpl := commentTemplates[f.faker.Number(0, len(commentTemplates)-1)]
	args := []interface{}{f.faker.NounAbstract(), f.faker.AdjectiveDescriptive()}
	if strings.HasPrefix(tmpl, "%s work") {
		args = []interface{}{capitalize(f.faker.AdjectiveDescriptive()), f.faker.NounAbstract()}
	}
	return fmt.Sprintf(tmpl, args[:strings.Count(tmpl, "%s")]...)
}

// Pick returns up to n distinct indexes in [0, total) other than skip.
func (f *Factory) Pick(total, n, skip int) []int {
	candidates := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if i != skip {
			candidates = append(candidates, i)
		}
	}
	f.faker.ShuffleInts(candidates)
	if n > len(candidates) {
		n = len(candidates)
	}
	return candidates[:n]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
