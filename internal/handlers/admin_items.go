package handlers

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/IM2627/AIESEC-Shop/internal/models"
	"github.com/IM2627/AIESEC-Shop/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/nfnt/resize"
)

// maxImageBytes caps uploads at 5 MB before any decoding happens.
const maxImageBytes = 5 << 20

func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.AllItems()
	if err != nil {
		http.Error(w, "Error fetching items", http.StatusInternalServerError)
		return
	}

	tmpl := h.Templates.Get("admin_items.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"Items":     items,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) AddItemForm(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("admin_add_item.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Values":    r.Form, // Pre-fill form on error
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// parseItemForm validates the shared item fields of the create and update
// forms.
func parseItemForm(r *http.Request) (*models.Item, map[string]string) {
	errs := make(map[string]string)

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		errs["name"] = "Name is required."
	}

	priceStr := r.FormValue("price")
	price, err := strconv.ParseFloat(priceStr, 64)
	if priceStr == "" {
		errs["price"] = "Price is required."
	} else if err != nil {
		errs["price"] = "Invalid price format."
	} else if price < 0 {
		errs["price"] = "Price cannot be negative."
	}

	stockStr := r.FormValue("stock")
	stock, err := strconv.Atoi(stockStr)
	if stockStr == "" {
		errs["stock"] = "Stock is required."
	} else if err != nil {
		errs["stock"] = "Invalid stock value."
	} else if stock < 0 {
		errs["stock"] = "Stock cannot be negative."
	}

	return &models.Item{
		Name:        name,
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		Stock:       stock,
		Active:      r.FormValue("active") == "on" || r.FormValue("active") == "true",
	}, errs
}

// processImageUpload validates, resizes and stores an uploaded image,
// returning its public URL. Constraints: declared content type must be
// image/*, size at most 5 MB.
func (h *AdminHandler) processImageUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("unsupported content type %q", ct)
	}
	if header.Size > maxImageBytes {
		return "", fmt.Errorf("image exceeds 5MB limit (%d bytes)", header.Size)
	}

	var img image.Image
	var err error
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png":
		img, err = png.Decode(file)
	case ".jpeg", ".jpg":
		img, err = jpeg.Decode(file)
	default:
		return "", fmt.Errorf("unsupported image format %q", ext)
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	// Resize image (max width 800px, preserve aspect ratio)
	newImage := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	uploadPath := filepath.Join(h.UploadDir, filename)

	out, err := os.Create(uploadPath)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, newImage, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	return "/static/uploads/" + filename, nil
}

func (h *AdminHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	if err := r.ParseMultipartForm(maxImageBytes + 1<<20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Upload too large. Max 5MB."})
		http.Redirect(w, r, "/admin/items/new", http.StatusSeeOther)
		return
	}

	item, errs := parseItemForm(r)
	if len(errs) > 0 {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/admin/items/new", http.StatusSeeOther)
		return
	}

	// Image is optional; items without one render a placeholder.
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err := h.processImageUpload(file, header)
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: "Image upload failed: " + err.Error()})
			http.Redirect(w, r, "/admin/items/new", http.StatusSeeOther)
			return
		}
		item.ImageURL = imageURL
	}

	if err := h.Store.CreateItem(item); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving item to database."})
		http.Redirect(w, r, "/admin/items/new", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Item added successfully!"})
	http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
}

func (h *AdminHandler) EditItemForm(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	item, err := h.Store.ItemByID(id)
	if err != nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	tmpl := h.Templates.Get("admin_edit_item.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, "admin-session")
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Item":      item,
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	if err := r.ParseMultipartForm(maxImageBytes + 1<<20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Upload too large. Max 5MB."})
		http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
		return
	}

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid ID."})
		http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
		return
	}

	item, errs := parseItemForm(r)
	item.ID = id
	if len(errs) > 0 {
		for _, msg := range errs {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, fmt.Sprintf("/admin/items/edit?id=%d", id), http.StatusSeeOther)
		return
	}

	if err := h.Store.UpdateItem(item); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Error updating item."})
		http.Redirect(w, r, fmt.Sprintf("/admin/items/edit?id=%d", id), http.StatusSeeOther)
		return
	}

	// Optional image replacement
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err := h.processImageUpload(file, header)
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: "Image upload failed: " + err.Error()})
			http.Redirect(w, r, fmt.Sprintf("/admin/items/edit?id=%d", id), http.StatusSeeOther)
			return
		}
		if err := h.Store.UpdateItemImage(id, imageURL); err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: "Error saving new image."})
			http.Redirect(w, r, fmt.Sprintf("/admin/items/edit?id=%d", id), http.StatusSeeOther)
			return
		}
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Item updated successfully!"})
	http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, "admin-session")
	defer session.Save(r, w)

	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Invalid ID."})
		http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
		return
	}

	if err := h.Store.DeleteItem(id); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			session.AddFlash(FlashMessage{Type: "error", Message: "This item still has pending reservations. Collect or cancel them first."})
		case errors.Is(err, store.ErrNotFound):
			session.AddFlash(FlashMessage{Type: "error", Message: "Item not found."})
		default:
			session.AddFlash(FlashMessage{Type: "error", Message: "Error deleting item."})
		}
		http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Item deleted successfully!"})
	http.Redirect(w, r, "/admin/items", http.StatusSeeOther)
}
