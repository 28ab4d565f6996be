package server

// Request and response shapes for the JSON surface. The tree itself is always
// exchanged in its flat snapshot form; there is no nested DTO representation.

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type fileResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type listResponse struct {
	Path     string   `json:"path"`
	Children []string `json:"children"`
}

type treeEntry struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Kind     string      `json:"kind"`
	Children []treeEntry `json:"children,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type okResponse struct {
	Path string `json:"path"`
}
