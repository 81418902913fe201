package render

import (
	"strings"

	"centrale/internal/model"
)

// View models precompute everything the templates show, so the templates
// stay free of type switching.

type boardView struct {
	ID          string
	Name        string
	Icon        string
	Color       string
	HeaderColor string
	ColumnCount int
	RowCount    int
	Columns     []columnView
	Rows        []rowView
	// colspan for the add-row strip: delete cell + item cell + columns
	Span int
}

type columnView struct {
	ID   string
	Name string
	Icon string
}

type rowView struct {
	ID    string
	Item  string
	Cells []cellView
}

type cellView struct {
	ColumnID string
	Kind     string // text, link, files, status
	Empty    bool
	Text     string
	Link     *model.LinkValue
	LinkText string
	Status   *model.StatusValue
	Files    []fileView
}

type fileView struct {
	Name      string
	ShortName string
	URL       string
	Type      string
	Icon      string
}

func newBoardView(b *model.Board) boardView {
	v := boardView{
		ID:          b.ID,
		Name:        b.Name,
		Icon:        b.Icon,
		Color:       b.Color,
		ColumnCount: len(b.Columns),
		RowCount:    len(b.Rows),
		Span:        len(b.Columns) + 2,
	}
	for _, c := range b.Columns {
		v.Columns = append(v.Columns, columnView{ID: c.ID, Name: c.Name, Icon: model.ColumnTypeIcon(c.Type)})
	}
	for _, r := range b.Rows {
		rv := rowView{ID: r.ID, Item: r.Item}
		for _, c := range b.Columns {
			rv.Cells = append(rv.Cells, newCellView(c, r.Cells[c.ID]))
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}

func newCellView(c model.Column, val model.CellValue) cellView {
	cv := cellView{ColumnID: c.ID, Empty: val.IsEmpty()}
	switch c.Type {
	case model.TypeFile:
		cv.Kind = "files"
		for _, f := range val.Files {
			cv.Files = append(cv.Files, fileView{
				Name:      f.Name,
				ShortName: shorten(f.Name, 25),
				URL:       f.URL,
				Type:      f.Type,
				Icon:      FileIcon(f),
			})
		}
	case model.TypeStatus:
		cv.Kind = "status"
		cv.Status = val.Status
	case model.TypeLink:
		cv.Kind = "link"
		cv.Link = val.Link
		if val.Link != nil {
			cv.LinkText = val.Link.Text
			if cv.LinkText == "" {
				cv.LinkText = val.Link.URL
			}
		}
	default:
		cv.Kind = "text"
		cv.Text = val.Text
	}
	return cv
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// icons8 artwork by extension, as the entrepreneur view shows attachments
var fileIcons = map[string]string{
	"pdf":  "https://img.icons8.com/color/48/000000/pdf.png",
	"mp4":  "https://img.icons8.com/color/48/000000/video.png",
	"mp3":  "https://img.icons8.com/color/48/000000/musical-notes.png",
	"png":  "https://img.icons8.com/color/48/000000/image.png",
	"jpg":  "https://img.icons8.com/color/48/000000/image.png",
	"jpeg": "https://img.icons8.com/color/48/000000/image.png",
	"doc":  "https://img.icons8.com/color/48/000000/microsoft-word-2019--v1.png",
	"docx": "https://img.icons8.com/color/48/000000/microsoft-word-2019--v1.png",
	"xls":  "https://img.icons8.com/color/48/000000/microsoft-excel-2019--v1.png",
	"xlsx": "https://img.icons8.com/color/48/000000/microsoft-excel-2019--v1.png",
}

const genericFileIcon = "https://img.icons8.com/color/48/000000/file.png"

// FileIcon picks the display icon for an attachment by file extension.
func FileIcon(f model.FileRef) string {
	ext := strings.ToLower(strings.TrimPrefix(strings.ToLower(filenameExt(f.Name)), "."))
	if icon, ok := fileIcons[ext]; ok {
		return icon
	}
	return genericFileIcon
}

func filenameExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
