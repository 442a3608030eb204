package challenge

import "github.com/gil-sasi/code-mentor/internal/domain"

// template is a hand-authored challenge definition used when generated
// challenge creation is unavailable or fails.
type template struct {
	Title         string
	Description   string
	Requirements  []string
	Hints         []string
	Technologies  []string
	EstimatedTime int
	ExampleCode   string
}

func templateFor(difficulty domain.Difficulty, category domain.Category) (template, bool) {
	byCategory, ok := templates[difficulty]
	if !ok {
		return template{}, false
	}
	tpl, ok := byCategory[category]
	return tpl, ok
}

// templates holds exactly one entry per (difficulty, category) pair.
var templates = map[domain.Difficulty]map[domain.Category]template{
	domain.DifficultyBeginner: {
		domain.CategoryReact: {
			Title:       "Build a Counter Component",
			Description: "Create a React component that displays a number and two buttons to increment and decrement it. The count must never go below zero.",
			Requirements: []string{
				"Use a functional component with the useState hook",
				"Render the current count and two buttons",
				"Prevent the count from going below zero",
				"Disable the decrement button when the count is zero",
			},
			Hints: []string{
				"useState returns the value and a setter function",
				"Pass a function to the setter when the next value depends on the previous one",
			},
			Technologies:  []string{"React", "JavaScript"},
			EstimatedTime: 20,
			ExampleCode:   "function Counter() {\n  // your code here\n}",
		},
		domain.CategoryJavaScript: {
			Title:       "Array Statistics",
			Description: "Write a function that takes an array of numbers and returns an object with the minimum, maximum, and average values.",
			Requirements: []string{
				"Export a function called stats(numbers)",
				"Return {min, max, average} for a non-empty array",
				"Throw an error for an empty array",
				"Do not mutate the input array",
			},
			Hints: []string{
				"Math.min and Math.max accept spread arguments",
				"reduce is a clean way to sum the values",
			},
			Technologies:  []string{"JavaScript"},
			EstimatedTime: 15,
			ExampleCode:   "function stats(numbers) {\n  // your code here\n}",
		},
		domain.CategoryCSS: {
			Title:       "Center a Card",
			Description: "Style a card element so it is horizontally and vertically centered in the viewport, with rounded corners and a subtle shadow.",
			Requirements: []string{
				"Center the card both horizontally and vertically",
				"Add rounded corners and a box shadow",
				"Keep the card readable on screens down to 320px wide",
			},
			Hints: []string{
				"Flexbox on the parent with justify-content and align-items is the simplest approach",
				"Use max-width rather than a fixed width",
			},
			Technologies:  []string{"CSS", "HTML"},
			EstimatedTime: 15,
		},
		domain.CategoryTypeScript: {
			Title:       "Type a User Profile",
			Description: "Define TypeScript types for a user profile and write a function that formats a display name from it.",
			Requirements: []string{
				"Define a User interface with id, firstName, lastName, and an optional nickname",
				"Write displayName(user) that prefers the nickname when present",
				"The function must not accept objects missing required fields",
			},
			Hints: []string{
				"Use the ? modifier for optional properties",
				"The nullish coalescing operator handles the nickname fallback",
			},
			Technologies:  []string{"TypeScript"},
			EstimatedTime: 20,
			ExampleCode:   "interface User {\n  // your fields here\n}",
		},
		domain.CategoryNextJS: {
			Title:       "Create an About Page",
			Description: "Add an /about route to a Next.js app with a page component, a title set via metadata, and a link back to the home page.",
			Requirements: []string{
				"Create the page under the app router",
				"Set the page title using the metadata export",
				"Use the next/link component for navigation",
			},
			Hints: []string{
				"A folder with a page file defines a route in the app directory",
				"Link prefetches the target route automatically",
			},
			Technologies:  []string{"Next.js", "React"},
			EstimatedTime: 25,
		},
		domain.CategoryNode: {
			Title:       "Read a JSON Config File",
			Description: "Write a Node.js script that reads a JSON configuration file, validates that a required field is present, and prints a summary.",
			Requirements: []string{
				"Read the file asynchronously with fs/promises",
				"Parse the contents as JSON",
				"Exit with a non-zero code and an error message if the name field is missing",
			},
			Hints: []string{
				"Wrap JSON.parse in a try/catch",
				"process.exitCode is safer than calling process.exit directly",
			},
			Technologies:  []string{"Node.js", "JavaScript"},
			EstimatedTime: 20,
		},
		domain.CategoryGeneral: {
			Title:       "FizzBuzz with a Twist",
			Description: "Implement the classic FizzBuzz, but make the divisor/word pairs configurable so new rules can be added without changing the loop.",
			Requirements: []string{
				"Print numbers 1 to 100 applying the rules",
				"Accept the rules as a list of {divisor, word} pairs",
				"Adding a new rule must not require touching the main loop",
			},
			Hints: []string{
				"Build the output string by iterating over the rules",
				"An empty output string means the number itself should be printed",
			},
			Technologies:  []string{"JavaScript"},
			EstimatedTime: 15,
		},
	},
	domain.DifficultyIntermediate: {
		domain.CategoryReact: {
			Title:       "Debounced Search Input",
			Description: "Build a search input component that calls a provided onSearch callback, debounced so it fires at most once every 400ms while the user types.",
			Requirements: []string{
				"Accept an onSearch(query) prop",
				"Debounce calls to onSearch by 400ms",
				"Cancel the pending call when the component unmounts",
				"Show a loading indicator while a search is pending",
			},
			Hints: []string{
				"useEffect with a cleanup function handles the timer lifecycle",
				"useRef can hold the timer id without triggering re-renders",
			},
			Technologies:  []string{"React", "JavaScript"},
			EstimatedTime: 45,
		},
		domain.CategoryJavaScript: {
			Title:       "Promise Pool",
			Description: "Implement a function that runs an array of async task functions with a concurrency limit, resolving with the results in the original order.",
			Requirements: []string{
				"Export pool(tasks, limit) returning a Promise of results",
				"Never run more than limit tasks at once",
				"Preserve the input order in the results array",
				"Reject with the first error encountered",
			},
			Hints: []string{
				"Track results by index, not by completion order",
				"A shared cursor variable lets finished workers pick up the next task",
			},
			Technologies:  []string{"JavaScript"},
			EstimatedTime: 45,
		},
		domain.CategoryCSS: {
			Title:       "Responsive Card Grid",
			Description: "Lay out a set of cards in a responsive grid that adapts from one column on phones to four columns on wide screens without media queries.",
			Requirements: []string{
				"Use CSS Grid with auto-fit or auto-fill",
				"Cards must keep a minimum width of 240px",
				"Keep consistent gaps at every breakpoint",
				"Cards in the same row must share a height",
			},
			Hints: []string{
				"repeat(auto-fit, minmax(240px, 1fr)) does most of the work",
				"Grid stretches items in a row to equal height by default",
			},
			Technologies:  []string{"CSS", "HTML"},
			EstimatedTime: 40,
		},
		domain.CategoryTypeScript: {
			Title:       "Typed Event Emitter",
			Description: "Build an event emitter where event names and their payload types are checked at compile time.",
			Requirements: []string{
				"Define the emitter over a generic event map type",
				"on, off, and emit must only accept declared event names",
				"Payload types must match the event map for each event",
				"Listeners for one event must not receive another event's payload type",
			},
			Hints: []string{
				"Use keyof over the event map for the event name parameter",
				"Indexed access types give you the payload type per event",
			},
			Technologies:  []string{"TypeScript"},
			EstimatedTime: 50,
		},
		domain.CategoryNextJS: {
			Title:       "Blog with Dynamic Routes",
			Description: "Build a small blog section with a post list page and dynamic per-post pages generated from a local data source.",
			Requirements: []string{
				"List all posts at /blog with links to each post",
				"Render each post at /blog/[slug]",
				"Generate static params for all known slugs",
				"Return a 404 for unknown slugs",
			},
			Hints: []string{
				"generateStaticParams drives static generation for dynamic segments",
				"notFound() from next/navigation renders the 404 page",
			},
			Technologies:  []string{"Next.js", "React", "TypeScript"},
			EstimatedTime: 60,
		},
		domain.CategoryNode: {
			Title:       "Rate-Limited API Proxy",
			Description: "Build an HTTP server that proxies requests to an upstream API, limiting each client IP to 10 requests per minute.",
			Requirements: []string{
				"Forward method, path, and body to the upstream",
				"Track request counts per client IP in a sliding window",
				"Respond 429 with a Retry-After header when the limit is hit",
				"Do not leak upstream connection errors as crashes",
			},
			Hints: []string{
				"A Map of IP to timestamp arrays is enough for the window",
				"Prune old timestamps on each request rather than on a timer",
			},
			Technologies:  []string{"Node.js", "JavaScript"},
			EstimatedTime: 60,
		},
		domain.CategoryGeneral: {
			Title:       "LRU Cache",
			Description: "Implement a least-recently-used cache with a fixed capacity and O(1) get and put operations.",
			Requirements: []string{
				"get(key) returns the value and marks the entry as recently used",
				"put(key, value) evicts the least recently used entry when full",
				"Both operations must run in constant time",
				"Include a size property reflecting the current entry count",
			},
			Hints: []string{
				"A Map in JavaScript preserves insertion order",
				"Delete and re-insert to move an entry to the most recent position",
			},
			Technologies:  []string{"JavaScript"},
			EstimatedTime: 45,
		},
	},
	domain.DifficultyAdvanced: {
		domain.CategoryReact: {
			Title:       "Virtualized List",
			Description: "Render a list of 10,000 rows smoothly by only mounting the rows visible in the scroll viewport, plus a small overscan buffer.",
			Requirements: []string{
				"Only render rows intersecting the viewport plus an overscan of 5",
				"Keep the scrollbar proportional to the full list height",
				"Support variable row data without layout jumps for fixed row height",
				"Scrolling must not cause dropped frames on a mid-range laptop",
			},
			Hints: []string{
				"Absolute positioning inside a sized container keeps the scrollbar honest",
				"Derive the visible index range from scrollTop and row height",
			},
			Technologies:  []string{"React", "TypeScript"},
			EstimatedTime: 90,
		},
		domain.CategoryJavaScript: {
			Title:       "Reactive Store",
			Description: "Build a small reactive state store with subscriptions, computed values that track their dependencies automatically, and batched notifications.",
			Requirements: []string{
				"createStore(initial) returns get, set, and subscribe",
				"computed(fn) re-evaluates only when a dependency changes",
				"Multiple synchronous sets must notify subscribers once",
				"Unsubscribing during a notification must be safe",
			},
			Hints: []string{
				"Track the currently-evaluating computed in a module-level variable to record reads",
				"queueMicrotask gives you a cheap batching boundary",
			},
			Technologies:  []string{"JavaScript"},
			EstimatedTime: 90,
		},
		domain.CategoryCSS: {
			Title:       "Theme System with Custom Properties",
			Description: "Build a light/dark theme system using CSS custom properties with smooth transitions and no flash of the wrong theme on load.",
			Requirements: []string{
				"Define all colors as custom properties on a theme root",
				"Switch themes by toggling a single attribute or class",
				"Respect prefers-color-scheme as the default",
				"Persisted user choice must apply before first paint",
			},
			Hints: []string{
				"A tiny inline script in the document head can set the theme attribute early",
				"Transition color and background-color, not all properties",
			},
			Technologies:  []string{"CSS", "JavaScript", "HTML"},
			EstimatedTime: 75,
		},
		domain.CategoryTypeScript: {
			Title:       "Type-Safe Route Builder",
			Description: "Design a route definition API where path parameters are inferred from the pattern string, so building a URL with wrong or missing params fails to compile.",
			Requirements: []string{
				"route('/users/:id/posts/:postId') infers {id, postId} as required params",
				"build(params) rejects missing or extra parameters at compile time",
				"Static routes take no params argument",
				"Parameter values must be stringifiable types only",
			},
			Hints: []string{
				"Template literal types can split a path on '/'",
				"A conditional type with infer extracts the :param segments recursively",
			},
			Technologies:  []string{"TypeScript"},
			EstimatedTime: 90,
		},
		domain.CategoryNextJS: {
			Title:       "Incremental Dashboard",
			Description: "Build a dashboard page combining statically cached sections with per-request data, using streaming so slow sections do not block first paint.",
			Requirements: []string{
				"Cache the summary section with time-based revalidation",
				"Fetch the activity feed per request without caching",
				"Stream slow sections behind Suspense boundaries with skeletons",
				"A failure in one section must not take down the page",
			},
			Hints: []string{
				"The revalidate option controls cache lifetime per fetch",
				"Error boundaries scope failures to a single section",
			},
			Technologies:  []string{"Next.js", "React", "TypeScript"},
			EstimatedTime: 90,
		},
		domain.CategoryNode: {
			Title:       "Streaming CSV Transformer",
			Description: "Process a multi-gigabyte CSV file with constant memory: parse it as a stream, transform rows, and write the result, with clean error and backpressure handling.",
			Requirements: []string{
				"Use streams end to end; never buffer the whole file",
				"Respect backpressure from the output stream",
				"Malformed rows go to a separate rejects file with the line number",
				"Report rows processed per second on completion",
			},
			Hints: []string{
				"pipeline from stream/promises wires error handling for you",
				"A Transform stream holding only the current partial line keeps memory flat",
			},
			Technologies:  []string{"Node.js", "JavaScript"},
			EstimatedTime: 90,
		},
		domain.CategoryGeneral: {
			Title:       "Job Scheduler with Dependencies",
			Description: "Implement a job scheduler that runs jobs respecting a dependency graph, with maximum parallelism and cycle detection.",
			Requirements: []string{
				"Accept jobs as {id, dependsOn[], run()}",
				"Run independent jobs concurrently",
				"A job starts only after all its dependencies succeed",
				"Detect dependency cycles up front and fail fast",
				"A failed job skips its dependents and reports them as skipped",
			},
			Hints: []string{
				"Topological sort or in-degree counting detects cycles",
				"Track in-degree per job and decrement as dependencies finish",
			},
			Technologies:  []string{"JavaScript"},
			EstimatedTime: 90,
		},
	},
}
