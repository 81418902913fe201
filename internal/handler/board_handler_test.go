package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	"centrale/internal/auth"
	"centrale/internal/handler"
	"centrale/internal/httpserver"
	"centrale/internal/model"
	"centrale/internal/render"
	"centrale/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testSecret = "handler-test-secret"

type memRepo struct {
	boards map[model.Partition][]*model.Board
}

func (m *memRepo) List(_ context.Context, p model.Partition) ([]*model.Board, error) {
	out := []*model.Board{}
	for _, b := range m.boards[p] {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, p model.Partition, id string) (*model.Board, error) {
	for _, b := range m.boards[p] {
		if b.ID == id {
			return b.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: board %s", model.ErrNotFound, id)
}

func (m *memRepo) Create(_ context.Context, p model.Partition, b *model.Board) error {
	b.Version = 1
	m.boards[p] = append(m.boards[p], b.Clone())
	return nil
}

func (m *memRepo) Update(_ context.Context, p model.Partition, b *model.Board, expectedVersion *int64) error {
	for i, cur := range m.boards[p] {
		if cur.ID != b.ID {
			continue
		}
		if expectedVersion != nil && cur.Version != *expectedVersion {
			return fmt.Errorf("%w: board %s", model.ErrVersionConflict, b.ID)
		}
		b.Version = cur.Version + 1
		m.boards[p][i] = b.Clone()
		return nil
	}
	return fmt.Errorf("%w: board %s", model.ErrNotFound, b.ID)
}

func (m *memRepo) UpdateWithFileEvent(ctx context.Context, p model.Partition, b *model.Board, _ string, _ model.FileRef) error {
	return m.Update(ctx, p, b, nil)
}

func (m *memRepo) Delete(_ context.Context, p model.Partition, id string) error {
	for i, b := range m.boards[p] {
		if b.ID == id {
			m.boards[p] = append(m.boards[p][:i], m.boards[p][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: board %s", model.ErrNotFound, id)
}

func (m *memRepo) ReplaceAll(_ context.Context, p model.Partition, boards []*model.Board) error {
	out := make([]*model.Board, len(boards))
	for i, b := range boards {
		out[i] = b.Clone()
	}
	m.boards[p] = out
	return nil
}

type memFiles struct{}

func (memFiles) Save(p model.Partition, boardID, rowID, name string, _ io.Reader) (model.FileRef, error) {
	return model.FileRef{
		Name: name,
		URL:  path.Join("/uploads", string(p), boardID, rowID, name),
		Type: model.FileRefUpload,
	}, nil
}
func (memFiles) Delete(model.Partition, string, string, string) error { return nil }
func (memFiles) DeleteAll(model.Partition, string, string) error      { return nil }

type noCache struct{}

func (noCache) Get(context.Context, model.Partition) ([]*model.Board, bool) { return nil, false }
func (noCache) Set(context.Context, model.Partition, []*model.Board)        {}
func (noCache) Invalidate(context.Context, model.Partition)                 {}

type memUsers struct{}

func (memUsers) Insert(context.Context, *model.User) error { return nil }
func (memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, username)
}
func (memUsers) ListByRole(context.Context, model.Role) ([]model.User, error) {
	return []model.User{}, nil
}

func newTestRouter(t *testing.T, repo *memRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	renderer, err := render.New()
	if err != nil {
		t.Fatal(err)
	}
	boards := service.NewBoardService(repo, memFiles{}, noCache{}, logger)
	users := service.NewUserService(memUsers{}, testSecret)
	router := httpserver.NewRouter(
		handler.NewAuthHandler(users, logger),
		handler.NewBoardHandler(boards, logger),
		handler.NewPageHandler(boards, renderer, logger),
		testSecret,
		t.TempDir(),
		nil,
	)
	return router.Engine
}

func token(t *testing.T, role model.Role) string {
	t.Helper()
	tok, err := auth.GenerateJWT("test-user", role, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func do(t *testing.T, engine *gin.Engine, method, target, authz string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func seededRepo(t *testing.T) (*memRepo, *model.Board, string, string) {
	t.Helper()
	b, err := model.NewBoard("Suivi", "folder", "")
	if err != nil {
		t.Fatal(err)
	}
	col, err := b.AddColumn(model.TypeFile, "Documents")
	if err != nil {
		t.Fatal(err)
	}
	row := b.AddRow()
	b.Version = 1
	repo := &memRepo{boards: map[model.Partition][]*model.Board{
		model.PartitionCoach: {b},
	}}
	return repo, b, col.ID, row.ID
}

func TestListBoardsRequiresToken(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	w := do(t, engine, "GET", "/api/centrale/boards", "", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestListBoards(t *testing.T) {
	repo, b, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	w := do(t, engine, "GET", "/api/centrale/boards?type=coach", token(t, model.RoleCoach), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Boards []*model.Board `json:"boards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Boards) != 1 || resp.Boards[0].ID != b.ID {
		t.Errorf("boards = %+v", resp.Boards)
	}
}

func TestEntrepreneurCannotReadCoachPartition(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	w := do(t, engine, "GET", "/api/centrale/boards?type=coach", token(t, model.RoleEntrepreneur), nil, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestEntrepreneurCannotWrite(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	body := strings.NewReader(`{"name":"Nouveau"}`)
	w := do(t, engine, "POST", "/api/centrale/boards?type=entrepreneur", token(t, model.RoleEntrepreneur), body, "application/json")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestUpdateBoardIfMatchConflict(t *testing.T) {
	repo, b, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	doc, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("PUT", "/api/centrale/boards/"+b.ID+"?type=coach", bytes.NewReader(doc))
	req.Header.Set("Authorization", token(t, model.RoleCoach))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", "99")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409, body %s", w.Code, w.Body.String())
	}
}

func TestUpdateBoardMatchingVersionSetsETag(t *testing.T) {
	repo, b, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	doc, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("PUT", "/api/centrale/boards/"+b.ID+"?type=coach", bytes.NewReader(doc))
	req.Header.Set("Authorization", token(t, model.RoleCoach))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Match", "1")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("ETag"); got != "2" {
		t.Errorf("ETag = %q, want 2", got)
	}
}

func TestDeleteBoardNotFound(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	w := do(t, engine, "DELETE", "/api/centrale/boards/inconnu?type=coach", token(t, model.RoleAdmin), nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func uploadRequest(t *testing.T, boardID, rowID, columnID, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"board_id":  boardID,
		"row_id":    rowID,
		"column_id": columnID,
	} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("contenu")); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	repo, b, colID, rowID := seededRepo(t)
	engine := newTestRouter(t, repo)

	body, contentType := uploadRequest(t, b.ID, rowID, colID, "rapport.pdf")
	w := do(t, engine, "POST", "/api/centrale/boards/upload-file?type=coach", token(t, model.RoleCoach), body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		File model.FileRef `json:"file"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.File.Name != "rapport.pdf" || resp.File.Type != model.FileRefUpload {
		t.Errorf("file = %+v", resp.File)
	}
}

func TestUploadFileCapReturnsFrenchError(t *testing.T) {
	repo, b, colID, rowID := seededRepo(t)
	stored := repo.boards[model.PartitionCoach][0]
	for i := 0; i < model.MaxFilesPerCell; i++ {
		if err := stored.AttachFile(rowID, colID, model.FileRef{
			Name: fmt.Sprintf("doc-%d.pdf", i),
			URL:  "/uploads/x",
			Type: model.FileRefUpload,
		}); err != nil {
			t.Fatal(err)
		}
	}
	engine := newTestRouter(t, repo)

	body, contentType := uploadRequest(t, b.ID, rowID, colID, "extra.pdf")
	w := do(t, engine, "POST", "/api/centrale/boards/upload-file?type=coach", token(t, model.RoleCoach), body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Maximum 3 fichiers autorisés") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSaveAllMigratesLegacySections(t *testing.T) {
	repo := &memRepo{boards: map[model.Partition][]*model.Board{}}
	engine := newTestRouter(t, repo)

	payload := `{"boards":[{"id":"abc","title":"Ancien","icon":"folder","columns":[{"name":"Élément","type":"texte"}],"rows":[]}]}`
	w := do(t, engine, "POST", "/api/centrale/sections/save-all?type=coach", token(t, model.RoleAdmin), strings.NewReader(payload), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	saved := repo.boards[model.PartitionCoach]
	if len(saved) != 1 {
		t.Fatalf("saved %d boards", len(saved))
	}
	if saved[0].Name != "Ancien" {
		t.Errorf("name = %q", saved[0].Name)
	}
}

func TestUpdateRowPatchEndpoint(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	b, err := model.NewBoard("Notes", "folder", "")
	if err != nil {
		t.Fatal(err)
	}
	col, err := b.AddColumn(model.TypeText, "Commentaire")
	if err != nil {
		t.Fatal(err)
	}
	row := b.AddRow()
	b.Version = 1
	repo.boards[model.PartitionCoach] = append(repo.boards[model.PartitionCoach], b)
	engine := newTestRouter(t, repo)

	payload := fmt.Sprintf(`{"item":"Projet Beta","cells":{%q:"en cours"}}`, col.ID)
	target := fmt.Sprintf("/api/centrale/sections/%s/rows/%s?type=coach", b.ID, row.ID)
	w := do(t, engine, "PUT", target, token(t, model.RoleCoach), strings.NewReader(payload), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var updated model.Board
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	got, err := updated.Row(row.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Item != "Projet Beta" || got.Cells[col.ID].Text != "en cours" {
		t.Errorf("row = %+v", got)
	}
}

func TestAdminPageForbiddenForEntrepreneur(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	engine := newTestRouter(t, repo)

	w := do(t, engine, "GET", "/admin/centrale?type=coach", token(t, model.RoleEntrepreneur), nil, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestViewPageRendersPartitionOfRole(t *testing.T) {
	repo, _, _, _ := seededRepo(t)
	eb, err := model.NewBoard("Vitrine", "folder", "")
	if err != nil {
		t.Fatal(err)
	}
	repo.boards[model.PartitionEntrepreneur] = []*model.Board{eb}
	engine := newTestRouter(t, repo)

	w := do(t, engine, "GET", "/view/centrale", token(t, model.RoleEntrepreneur), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Vitrine") {
		t.Error("entrepreneur view missing their board")
	}
	if strings.Contains(w.Body.String(), "Suivi") {
		t.Error("entrepreneur view leaked coach board")
	}
}
