package build

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/forgecore/forge/internal/content"
)

// defaultWorkerCount sizes the render worker pool when config.BuildConfig's
// Workers override is zero: at least 2, at most 10, otherwise one less than
// NumCPU so a build doesn't starve the machine's other work.
func defaultWorkerCount() int {
	n := runtime.NumCPU() - 1
	if n < 2 {
		n = 2
	}
	if n > 10 {
		n = 10
	}
	return n
}

// renderParallel processes pages concurrently using a worker pool. The fn
// callback is invoked for every page regardless of whether an earlier page
// failed — a single page's render/template error is isolated to that page
// and never stops the others from being attempted. All per-page errors are
// joined and returned to the caller, which decides whether any of them are
// fatal to the overall build.
func renderParallel(pages []*content.Page, workers int, fn func(*content.Page) error) error {
	if workers <= 0 {
		workers = defaultWorkerCount()
	}
	if len(pages) == 0 {
		return nil
	}
	// Don't create more workers than pages.
	if workers > len(pages) {
		workers = len(pages)
	}

	jobs := make(chan *content.Page, len(pages))
	var mu sync.Mutex
	var errs []error
	var wg sync.WaitGroup

	// Start workers.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				if err := fn(page); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("processing page %s: %w", page.SourcePath, err))
					mu.Unlock()
				}
			}
		}()
	}

	// Send jobs.
	for _, p := range pages {
		jobs <- p
	}
	close(jobs)

	// Wait for workers to finish; every page was attempted regardless of
	// other pages' outcomes.
	wg.Wait()

	return errors.Join(errs...)
}

// setSectionNavigation sets PrevPage and NextPage links for pages within
// the same section. Pages should already be sorted (newest first).
func setSectionNavigation(pages []*content.Page) {
	// Group pages by section.
	sections := make(map[string][]*content.Page)
	for _, p := range pages {
		if p.Type == content.PageTypeSingle {
			sections[p.Section] = append(sections[p.Section], p)
		}
	}

	// Set prev/next within each section.
	for _, sectionPages := range sections {
		for i, p := range sectionPages {
			if i > 0 {
				p.NextPage = sectionPages[i-1] // newer page
			}
			if i < len(sectionPages)-1 {
				p.PrevPage = sectionPages[i+1] // older page
			}
		}
	}
}

// buildTaxonomyMaps builds maps from taxonomy term to pages.
// Returns maps for tags and categories.
func buildTaxonomyMaps(pages []*content.Page) (tags map[string][]*content.Page, categories map[string][]*content.Page) {
	tags = make(map[string][]*content.Page)
	categories = make(map[string][]*content.Page)

	for _, p := range pages {
		for _, tag := range p.Tags {
			tags[tag] = append(tags[tag], p)
		}
		for _, cat := range p.Categories {
			categories[cat] = append(categories[cat], p)
		}
	}
	return tags, categories
}
